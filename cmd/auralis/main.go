package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/matiaszanolli/auralis/internal/config"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	_ = godotenv.Load()
	cfg := config.FromEnv()

	switch os.Args[1] {
	case "fingerprint":
		if len(os.Args) < 3 {
			fmt.Println("usage: auralis fingerprint <audio_file>")
			os.Exit(1)
		}
		fingerprintCmd(cfg, os.Args[2])

	case "play":
		playCmd := flag.NewFlagSet("play", flag.ExitOnError)
		preset := playCmd.String("preset", "default", "mastering preset")
		intensity := playCmd.Float64("intensity", 0.5, "mastering intensity 0.0-1.0")
		chunks := playCmd.Int("chunks", 0, "stop after N chunks (0 = whole track)")
		playCmd.Parse(os.Args[2:])
		if playCmd.NArg() < 1 {
			fmt.Println("usage: auralis play [-preset p] [-intensity 0.5] [-chunks N] <audio_file>")
			os.Exit(1)
		}
		runPlayCmd(cfg, playCmd.Arg(0), *preset, *intensity, *chunks)

	case "prefs":
		if len(os.Args) < 3 {
			fmt.Println("usage: auralis prefs <update <type> <bass_delta_db> | show>")
			os.Exit(1)
		}
		switch os.Args[2] {
		case "show":
			prefsShowCmd()
		case "update":
			prefsCmd := flag.NewFlagSet("prefs update", flag.ExitOnError)
			prefsCmd.Parse(os.Args[3:])
			if prefsCmd.NArg() < 2 {
				fmt.Println("usage: auralis prefs update <type> <bass_delta_db>")
				os.Exit(1)
			}
			prefsUpdateCmd(prefsCmd.Arg(0), prefsCmd.Arg(1))
		default:
			fmt.Println("usage: auralis prefs <update <type> <bass_delta_db> | show>")
			os.Exit(1)
		}

	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("usage: auralis <command>")
	fmt.Println()
	fmt.Println("commands:")
	fmt.Println("  fingerprint <audio_file>                        extract and store a fingerprint")
	fmt.Println("  play [-preset p] [-intensity 0.5] <audio_file>  stream a track through the mastering pipeline")
	fmt.Println("  prefs update <type> <bass_delta_db>             apply a personal-preference offset")
	fmt.Println("  prefs show                                      print the committed preferences")
}
