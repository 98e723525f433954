package main

import (
	"log"

	"github.com/ethanbaker/symptomchat/internal/stubserver"
	"github.com/ethanbaker/symptomchat/pkg/utils"
)

// Start the scripted dialogue service
func main() {
	// Load global config
	cfg := utils.NewConfigFromEnv(utils.EnvFile())

	// Start
	if err := stubserver.Start(cfg); err != nil {
		log.Fatal("[API-MAIN]: ", err)
	}
}
