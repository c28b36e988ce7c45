package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"filepower/cmd/console/ui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	server := flag.String("server", "http://127.0.0.1:9400", "Backend base URL")
	timeout := flag.Duration("timeout", 15*time.Second, "Request timeout")
	downloads := flag.String("downloads", ".", "Directory downloads are saved to")
	logPath := flag.String("log", "", "Write debug logs to this file")
	flag.Parse()

	// the terminal belongs to the UI, so logs only go to a file
	zerolog.SetGlobalLevel(zerolog.Disabled)
	if *logPath != "" {
		f, err := tea.LogToFile(*logPath, "console")
		if err != nil {
			fmt.Fprintln(os.Stderr, "open log file:", err)
			os.Exit(1)
		}
		defer f.Close()
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		log.Logger = zerolog.New(f).With().Timestamp().Logger()
	}
	log.Info().Str("server", *server).Msg("console starting")

	m := ui.NewRootModel(ui.Options{Server: *server, Timeout: *timeout, DownloadDir: *downloads})
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		log.Error().Err(err).Msg("console exited")
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
