package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"filepower/backend/app/dto"
	"filepower/backend/app/models"
	"filepower/backend/config"
	"filepower/backend/global"
	"filepower/backend/initialize"
	"filepower/backend/server"

	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "filepower",
		Usage: "shared file tree backend",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to the YAML config file",
				EnvVars: []string{"FILEPOWER_CONFIG"},
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP API",
				Action: serve,
			},
			{
				Name:  "migrate",
				Usage: "create or update the database tables",
				Action: func(c *cli.Context) error {
					cfg, err := config.Load(c.String("config"))
					if err != nil {
						return err
					}
					initialize.SetLogLevel(cfg.Log.Level)
					gdb, err := initialize.Connect(cfg)
					if err != nil {
						return err
					}
					if err := initialize.Migrate(gdb); err != nil {
						return err
					}
					fmt.Println("Database is up to date")
					return nil
				},
			},
			{
				Name:      "create-user",
				Usage:     "add an account",
				ArgsUsage: " ",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Required: true},
					&cli.StringFlag{Name: "password", Required: true},
					&cli.StringFlag{Name: "name"},
					&cli.BoolFlag{Name: "admin", Usage: "grant the admin role"},
				},
				Action: func(c *cli.Context) error {
					a, err := initialize.Build(c.String("config"))
					if err != nil {
						return err
					}
					defer a.Close()
					role := models.RoleUser
					if c.Bool("admin") {
						role = models.RoleAdmin
					}
					u, err := a.Users.CreateUser(dto.CreateUserRequest{
						Email:    c.String("email"),
						Password: c.String("password"),
						FullName: c.String("name"),
						Role:     role,
					})
					if err != nil {
						return err
					}
					fmt.Printf("Created %s (%s)\n", u.Email, u.ID)
					return nil
				},
			},
		},
		DefaultCommand: "serve",
	}

	if err := app.Run(os.Args); err != nil {
		global.Logger.Fatal().Err(err).Msg("filepower")
	}
}

func serve(c *cli.Context) error {
	a, err := initialize.Build(c.String("config"))
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return server.Run(ctx, a.Cfg.HTTP.Host, a.Cfg.HTTP.Port, a.Router, a.Cfg.HTTP.ShutdownGrace)
}
