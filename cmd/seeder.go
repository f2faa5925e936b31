package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/nkaumov/kurs-zakat/internal"
	"github.com/nkaumov/kurs-zakat/internal/auth"
	employeeDatamodel "github.com/nkaumov/kurs-zakat/internal/core/datamodel/employee"
	"github.com/nkaumov/kurs-zakat/internal/database"
	"github.com/nkaumov/kurs-zakat/internal/user"
	userPostgres "github.com/nkaumov/kurs-zakat/internal/user/postgres"
	"github.com/nkaumov/kurs-zakat/pkg/logger"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long: `Seed the database with a chef and a manager account plus a few employees.
Running it twice leaves existing rows alone.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		lg := logger.LoggerWrapper()
		db, err := database.Open(cfg.Database, lg)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}

		if clearData {
			if err := clearTables(db); err != nil {
				log.Fatalf("failed to clear data: %v", err)
			}
			fmt.Println("Existing data cleared")
		}

		ctx := context.Background()
		users := user.NewService(userPostgres.NewUserRepository(db), auth.NewBcryptHasher(cfg.Security.BCryptCost), lg)

		accounts := []user.CreateUserDTO{
			{Username: "chef", Password: "chef", Role: string(internal.RoleChef)},
			{Username: "manager", Password: "manager", Role: string(internal.RoleManager)},
		}
		for _, acc := range accounts {
			existing, err := users.GetByUsername(ctx, acc.Username)
			if err != nil {
				log.Fatalf("failed to look up %s: %v", acc.Username, err)
			}
			if existing != nil {
				fmt.Printf("%s user already exists\n", acc.Username)
				continue
			}
			if _, err := users.Create(ctx, acc); err != nil {
				log.Fatalf("failed to insert %s user: %v", acc.Username, err)
			}
			fmt.Printf("Seeded %s user: %s/%s\n", acc.Role, acc.Username, acc.Password)
		}

		employees := []employeeDatamodel.Employee{
			{FullName: "Anna Smirnova", Position: "Cook", PhoneNumber: "+7 900 000-00-01"},
			{FullName: "Ivan Petrov", Position: "Sous-chef", PhoneNumber: "+7 900 000-00-02"},
			{FullName: "Olga Ivanova", Position: "Dishwasher"},
		}
		for _, e := range employees {
			var count int64
			if err := db.Model(&employeeDatamodel.Employee{}).Where("full_name = ?", e.FullName).Count(&count).Error; err != nil {
				log.Fatalf("failed to look up employee %s: %v", e.FullName, err)
			}
			if count > 0 {
				continue
			}
			if err := db.Create(&e).Error; err != nil {
				log.Fatalf("failed to insert employee %s: %v", e.FullName, err)
			}
			fmt.Printf("Seeded employee: %s\n", e.FullName)
		}

		fmt.Println("Seeding finished")
	},
}

// clearTables empties every table, children before parents.
func clearTables(db *gorm.DB) error {
	models := database.Models()
	return db.Transaction(func(tx *gorm.DB) error {
		for i := len(models) - 1; i >= 0; i-- {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(models[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
