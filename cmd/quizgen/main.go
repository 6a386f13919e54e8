// Command quizgen builds a single quiz from the command line and prints it
// as JSON, useful for smoke-testing credentials and prompts without the
// web server.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"songquiz/internal/config"
	"songquiz/internal/logger"
	"songquiz/internal/pipeline"
	"songquiz/internal/quiz"
)

func main() {
	var (
		prompt     string
		count      int
		difficulty string
		configPath string
		verbose    bool
		timeout    time.Duration
	)

	flag.StringVar(&prompt, "prompt", "", "Music genre/era prompt (required)")
	flag.IntVar(&count, "count", 10, "Number of songs (10-50)")
	flag.StringVar(&difficulty, "difficulty", "medium", "Difficulty: easy, medium, hard")
	flag.StringVar(&configPath, "config", "", "Config file path")
	flag.BoolVar(&verbose, "verbose", false, "Verbose logging")
	flag.DurationVar(&timeout, "timeout", 60*time.Second, "Overall build timeout")
	flag.Parse()

	if len(prompt) < 2 {
		fmt.Fprintln(os.Stderr, "[ERROR] -prompt is required and must be at least 2 characters")
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfigFile(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[ERROR] %v\n", err)
		os.Exit(1)
	}
	if verbose {
		cfg.Verbose = true
	}

	log := logger.New(cfg.Verbose)
	defer log.Close()

	if err := cfg.Validate(); err != nil {
		log.Error("Configuration error: %v", err)
		os.Exit(1)
	}

	d, err := quiz.ParseDifficulty(difficulty)
	if err != nil {
		log.Error("%v", err)
		os.Exit(1)
	}

	builder, err := pipeline.FromConfig(cfg, log)
	if err != nil {
		log.Error("%v", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	songs, err := builder.Build(ctx, prompt, count, d, pipeline.Hooks{})
	if err != nil {
		log.Error("Quiz build failed: %v", err)
		os.Exit(1)
	}

	result := quiz.Quiz{
		ID:         quiz.NewID(),
		Prompt:     prompt,
		Songs:      songs,
		TotalSongs: len(songs),
		Difficulty: d,
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		log.Error("Failed to encode quiz: %v", err)
		os.Exit(1)
	}
}
