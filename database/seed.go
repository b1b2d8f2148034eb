package database

import (
	"log"

	"lab_storage/constants"
	"lab_storage/model"

	"github.com/gosimple/slug"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func SeedData(db *gorm.DB) {
	bytes, err := bcrypt.GenerateFromPassword([]byte("changeme!1"), 10)
	if err != nil {
		log.Println("failed to hash seed password:", err)
		return
	}
	HashPassword := string(bytes)

	labs := []model.Laboratory{
		{Name: "Central Quality Lab", EntranceX: 0, EntranceY: 200},
		{Name: "Harbor Intake Lab", EntranceX: 40, EntranceY: 0},
	}
	for i := range labs {
		labs[i].Slug = slug.Make(labs[i].Name)
		if err := db.Where(model.Laboratory{Name: labs[i].Name}).FirstOrCreate(&labs[i]).Error; err != nil {
			log.Println("failed to seed laboratory:", labs[i].Name, "error:", err)
		}
	}

	// Client directory rows come from the external client service in
	// production; seeded here so assignment is exercisable.
	clients := []model.Client{
		{Name: "Altura Trading", Code: "ALT"},
		{Name: "Boreal Imports", Code: "BOR"},
		{Name: "Cafetal Group", Code: "CAF"},
	}
	for i := range clients {
		if err := db.Where(model.Client{Name: clients[i].Name}).FirstOrCreate(&clients[i]).Error; err != nil {
			log.Println("failed to seed client:", clients[i].Name, "error:", err)
		}
	}

	labId := labs[0].ID
	clientId := clients[0].ID
	accounts := []model.Account{
		{Username: "administration", Password: HashPassword, Active: true, Role: constants.ROLE_ADMIN},
		{Username: "quality.admin", Password: HashPassword, Active: true, Role: constants.ROLE_QUALITY_ADMIN},
		{Username: "central.manager", Password: HashPassword, Active: true, Role: constants.ROLE_QUALITY_MANAGER, LabId: &labId},
		{Username: "altura.client", Password: HashPassword, Active: true, Role: constants.ROLE_CLIENT, ClientId: &clientId},
	}
	for _, account := range accounts {
		if err := db.Where(model.Account{Username: account.Username}).FirstOrCreate(&account).Error; err != nil {
			log.Println("failed to seed data for account:", account.Username, "error:", err)
		}
	}
}
