package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/railmadad/portal/internal/auth"
	"github.com/railmadad/portal/internal/util"
)

// hashpass prints the argon2id hash of a password given as the only argument
// or, when absent, read from the first line of stdin.
func main() {
	password := ""
	if len(os.Args) >= 2 {
		password = os.Args[1]
	} else {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			fmt.Fprintln(os.Stderr, "usage: hashpass <password>  (or pipe it on stdin)")
			os.Exit(1)
		}
		password = strings.TrimRight(line, "\r\n")
	}

	if err := util.ValidatePassword(password); err != nil {
		fmt.Fprintf(os.Stderr, "hashpass: %v\n", err)
		os.Exit(1)
	}

	hash, err := auth.Hash(password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hash error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(hash)
}
