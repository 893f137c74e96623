// Command zshelld is a minimal stdin/stdout harness around the
// conversion engine: it stands in for the real host application (the
// C-ABI surface, symbol tables, and file/environment discovery are all
// out of scope per the core's spec) for manual smoke tests and
// integration tests.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/zhuyinime/zhuyin/internal/dict"
	"github.com/zhuyinime/zhuyin/internal/layout"
	"github.com/zhuyinime/zhuyin/internal/session"
	"github.com/zhuyinime/zhuyin/internal/userdict"
)

func main() {
	dictDir := flag.String("dict", ".", "directory containing dict.dat and fonetree.dat")
	userPath := flag.String("user", "user.dat", "path to the user phrase store")
	kb := flag.Int("layout", int(layout.Default), "keyboard layout id")
	logPath := flag.String("log", "zshelld.log", "path to the diagnostics log file")
	flag.Parse()

	logFile, err := os.OpenFile(*logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	var logger *log.Logger
	if err == nil {
		logger = log.New(logFile, "", log.LstdFlags)
		defer logFile.Close()
	} else {
		fmt.Fprintf(os.Stderr, "zshelld: failed to open log file: %v\n", err)
	}

	tree, err := dict.Open(*dictDir+"/fonetree.dat", *dictDir+"/dict.dat")
	if err != nil {
		fmt.Fprintln(os.Stderr, "zshelld: failed to open dictionary:", err)
		os.Exit(1)
	}
	defer tree.Close()

	store, err := userdict.Open(*userPath, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, "zshelld: failed to open user store:", err)
		os.Exit(1)
	}
	defer store.Close()

	cfg := session.DefaultConfig()
	cfg.KeyboardLayout = *kb
	sess := session.New(cfg, tree, store, func() int64 { return time.Now().Unix() }, logger)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nzshelld: shutting down")
		sess.Close()
		os.Exit(0)
	}()

	fmt.Println("================================================")
	fmt.Println("zshelld: conversion engine shell")
	fmt.Println("================================================")
	fmt.Printf("  Dictionary:  %s\n", *dictDir)
	fmt.Printf("  User store:  %s\n", *userPath)
	fmt.Printf("  Layout:      %d\n", *kb)
	fmt.Println("------------------------------------------------")
	fmt.Println("Type a line of keys and press Enter. ESC, TAB, BS are")
	fmt.Println("spelled \\e \\t \\b within the line.")
	fmt.Println()

	runShell(sess, logger)
}

func runShell(sess *session.Session, logger *log.Logger) {
	sc := bufio.NewScanner(os.Stdin)
	for sc.Scan() {
		line := sc.Text()
		for i := 0; i < len(line); i++ {
			key := line[i]
			if key == '\\' && i+1 < len(line) {
				switch line[i+1] {
				case 'e':
					key = session.KeyEscape
				case 't':
					key = session.KeyTab
				case 'b':
					key = session.KeyBackspace
				default:
					i++
					continue
				}
				i++
			}
			sess.HandleKey(key)
		}
		sess.HandleKey(session.KeyEnter)

		if commit := sess.Commit(); commit != "" {
			fmt.Printf("commit:  %s\n", commit)
		}
		fmt.Printf("preedit: %s\n", sess.Preedit())

		if err := sess.Sync(); err != nil && logger != nil {
			logger.Printf("zshelld: sync failed: %v", err)
		}
	}
}
