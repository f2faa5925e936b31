package cmd

import (
	"fmt"
	"log"

	"github.com/nkaumov/kurs-zakat/internal/auth"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

var hashCost int

var hashCmd = &cobra.Command{
	Use:   "hash <password>",
	Short: "Print the bcrypt hash of a password",
	Long:  `Print a bcrypt hash suitable for inserting a user row by hand.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		hash, err := auth.NewBcryptHasher(hashCost).Hash(args[0])
		if err != nil {
			log.Fatalf("failed to hash password: %v", err)
		}
		fmt.Println(hash)
	},
}

func init() {
	hashCmd.Flags().IntVar(&hashCost, "cost", bcrypt.DefaultCost, "bcrypt cost")
}
