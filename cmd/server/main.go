package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/Boyan92/SalaryCalculatorNew/internal/app/server"
	"github.com/Boyan92/SalaryCalculatorNew/internal/domain/auth"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "hash-password" {
		hashPassword()
		return
	}
	server.Run()
}

// hashPassword reads a password from stdin and prints the bcrypt hash for
// OPERATOR_PASSWORD_HASH.
func hashPassword() {
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		log.Fatalf("read password: %v", err)
	}
	password := strings.TrimRight(line, "\r\n")
	if len(password) < 8 {
		log.Fatal("password must be at least 8 characters")
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}
	fmt.Println(hash)
}
