// Command admintoken issues a staff token signed with JWT_SECRET, for local
// use and smoke tests against the API.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/example/retailadmin/internal/config"
	"github.com/example/retailadmin/internal/utils"
)

func main() {
	name := flag.String("name", "admin", "staff name recorded on manual adjustments")
	id := flag.String("id", "", "staff id (random when empty)")
	flag.Parse()

	cfg := config.Load()

	staff := utils.Staff{ID: uuid.New(), Name: *name}
	if *id != "" {
		parsed, err := uuid.Parse(*id)
		if err != nil {
			log.Fatalf("invalid -id: %v", err)
		}
		staff.ID = parsed
	}

	token, err := utils.GenerateToken(cfg.JWTSecret, staff, cfg.TokenExpires)
	if err != nil {
		log.Fatalf("failed to sign token: %v", err)
	}
	fmt.Println(token)
}
