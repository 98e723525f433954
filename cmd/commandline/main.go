package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethanbaker/symptomchat/internal/terminal"
	"github.com/ethanbaker/symptomchat/pkg/dialogue"
	"github.com/ethanbaker/symptomchat/pkg/sdk"
	"github.com/ethanbaker/symptomchat/pkg/session"
	"github.com/ethanbaker/symptomchat/pkg/utils"
	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var envFile string
	var server, user, sex string
	var age int

	cmd := &cobra.Command{
		Use:   "commandline",
		Short: "Talk to the symptom assessment service from a terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			if envFile == "" {
				envFile = utils.EnvFile()
			}

			// Load global config, letting flags override the environment
			cfg := utils.NewConfigFromEnv(envFile)
			if cmd.Flags().Changed("server") {
				cfg.Set(utils.KeyAPIURL, server)
			}
			if cmd.Flags().Changed("user") {
				cfg.Set(utils.KeyUserID, user)
			}
			if cmd.Flags().Changed("age") {
				cfg.Set(utils.KeyAge, fmt.Sprint(age))
			}
			if cmd.Flags().Changed("sex") {
				cfg.Set(utils.KeySex, sex)
			}

			sess, err := newSession(cfg)
			if err != nil {
				return err
			}

			client := sdk.NewClient(cfg.GetWithDefault(utils.KeyAPIURL, utils.DefaultAPIURL))
			log.Printf("[COMMANDLINE]: user %s talking to %s", sess.UserID(), client.BaseURL())

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			term := terminal.New(os.Stdin, os.Stdout)
			ctrl := dialogue.New(sess, client, term.Options())
			return term.Run(ctx, ctrl)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "env file to load (default: $ENV_FILE or .env)")
	cmd.Flags().StringVar(&server, "server", "", "dialogue service URL (default: "+utils.DefaultAPIURL+")")
	cmd.Flags().StringVar(&user, "user", "", "user id (default: a random id)")
	cmd.Flags().IntVar(&age, "age", 0, "age sent with the first message")
	cmd.Flags().StringVar(&sex, "sex", "", "sex sent with the first message (male or female)")

	return cmd
}

// newSession builds the session from config, applying the age gate before anything is sent
func newSession(cfg *utils.Config) (*session.Session, error) {
	age, err := cfg.GetOptionalInt(utils.KeyAge)
	if err != nil {
		return nil, err
	}
	sex, err := session.ParseSex(cfg.Get(utils.KeySex))
	if err != nil {
		return nil, err
	}

	profile := session.Profile{Age: age, Sex: sex}
	if err := profile.Validate(); err != nil {
		return nil, err
	}

	source := session.NewStaticProfile(profile)
	if id := cfg.Get(utils.KeyUserID); id != "" {
		return session.New(id, source)
	}
	return session.NewAnonymous(source), nil
}
