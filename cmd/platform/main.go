package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/VarunStarz/sahayak-edu-local/api/server"
	"github.com/VarunStarz/sahayak-edu-local/internal/config"
	"github.com/VarunStarz/sahayak-edu-local/internal/platform"
)

var (
	configFile string
	verbose    bool
)

func main() {
	// Environment overrides are optional; a missing .env is not an error.
	_ = godotenv.Load()

	var rootCmd = &cobra.Command{
		Use:   "platform",
		Short: "Sahayak - local-first AI teaching assistant",
		Long: `An agent-based teaching assistant that runs on local models. It answers
student questions from indexed curriculum content, tracks learning progress,
recommends curriculum sequences, and plans study schedules.`,
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "configuration file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	var serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Start the agent HTTP server",
		Long:  `Start the HTTP API that exposes agents, tools, sessions, and analytics.`,
		RunE:  runServe,
	}

	var indexCmd = &cobra.Command{
		Use:   "index [path]",
		Short: "Index curriculum content",
		Long:  `Chunk, embed, and store curriculum files (txt, md, csv) from the given file or directory.`,
		Args:  cobra.ExactArgs(1),
		RunE:  runIndex,
	}
	indexCmd.Flags().StringP("subject", "s", "", "subject tag for the indexed content")
	indexCmd.Flags().IntP("difficulty", "d", 1, "difficulty level (1-10)")

	var configCmd = &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  `Manage platform configuration files.`,
	}

	var configInitCmd = &cobra.Command{
		Use:   "init [filename]",
		Short: "Create a default configuration file",
		Long:  `Generate a default configuration file with all available options.`,
		Args:  cobra.MaximumNArgs(1),
		RunE:  runConfigInit,
	}

	var configValidateCmd = &cobra.Command{
		Use:   "validate [filename]",
		Short: "Validate a configuration file",
		Long:  `Validate the syntax and values of a configuration file.`,
		Args:  cobra.ExactArgs(1),
		RunE:  runConfigValidate,
	}

	configCmd.AddCommand(configInitCmd, configValidateCmd)

	var statsCmd = &cobra.Command{
		Use:   "stats",
		Short: "Show platform statistics",
		Long:  `Display counts of students, interactions, and indexed content.`,
		RunE:  runStats,
	}

	rootCmd.AddCommand(serveCmd, indexCmd, configCmd, statsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %v", err)
	}

	ctx, cancel := signalContext()
	defer cancel()

	p, err := platform.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to build platform: %v", err)
	}
	defer p.Close()

	if verbose {
		fmt.Printf("Configuration: %s\n", cfg.String())
	}

	srv := server.New(&cfg.Server, &server.Dependencies{
		Store:    p.Store,
		Vectors:  p.Vectors,
		Agents:   p.Agents,
		Tools:    p.Tools,
		Sessions: p.Sessions,
		Recorder: p.History,
		LLM:      p.LLM,
		Logger:   p.Logger,
	})

	return srv.Start(ctx)
}

func runIndex(cmd *cobra.Command, args []string) error {
	path := args[0]
	subject, _ := cmd.Flags().GetString("subject")
	difficulty, _ := cmd.Flags().GetInt("difficulty")

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %v", err)
	}

	ctx, cancel := signalContext()
	defer cancel()

	p, err := platform.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to build platform: %v", err)
	}
	defer p.Close()

	ix, err := p.NewIndexer()
	if err != nil {
		return fmt.Errorf("failed to create indexer: %v", err)
	}

	if verbose {
		fmt.Printf("Indexing: %s\n", path)
	}

	startTime := time.Now()
	stats, err := ix.IndexPath(ctx, path, subject, difficulty)
	if err != nil {
		return fmt.Errorf("indexing failed: %v", err)
	}

	fmt.Printf("\nIndexing completed successfully!\n")
	fmt.Printf("Duration: %v\n", time.Since(startTime))
	fmt.Printf("Files processed: %d\n", stats.FilesProcessed)
	fmt.Printf("Files failed: %d\n", stats.FilesFailed)
	fmt.Printf("Chunks indexed: %d\n", stats.ChunksIndexed)
	fmt.Printf("Chunks skipped: %d\n", stats.ChunksSkipped)

	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	filename := "platform-config.json"
	if len(args) > 0 {
		filename = args[0]
	}

	cfg := config.DefaultConfig()
	if err := cfg.SaveToFile(filename); err != nil {
		return fmt.Errorf("failed to save config file: %v", err)
	}

	fmt.Printf("Default configuration saved to: %s\n", filename)
	fmt.Printf("Edit this file to customize your platform settings.\n")

	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	filename := args[0]

	cfg, err := config.LoadConfigFromFile(filename)
	if err != nil {
		return fmt.Errorf("failed to load config: %v", err)
	}

	fmt.Printf("Configuration file '%s' is valid!\n", filename)

	if verbose {
		fmt.Printf("\nConfiguration details:\n")
		configJSON, _ := json.MarshalIndent(cfg, "", "  ")
		fmt.Println(string(configJSON))
	}

	return nil
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %v", err)
	}

	ctx, cancel := signalContext()
	defer cancel()

	p, err := platform.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to build platform: %v", err)
	}
	defer p.Close()

	students, err := p.Store.CountStudents(ctx)
	if err != nil {
		return fmt.Errorf("failed to count students: %v", err)
	}
	interactions, err := p.Store.CountInteractions(ctx)
	if err != nil {
		return fmt.Errorf("failed to count interactions: %v", err)
	}

	fmt.Println("Platform Statistics:")
	fmt.Printf("Students: %d\n", students)
	fmt.Printf("Interactions: %d\n", interactions)
	fmt.Printf("Agents: %d\n", len(p.Agents.List()))
	fmt.Printf("Tools: %d\n", len(p.Tools.List()))

	if count, err := p.Vectors.Count(ctx); err == nil {
		fmt.Printf("Indexed chunks: %d\n", count)
	}

	return nil
}

func loadConfig() (*config.PlatformConfig, error) {
	if configFile == "" {
		possibleFiles := []string{
			"platform-config.json",
			"platform-config.yaml",
			"config.json",
			"config.yaml",
		}

		for _, file := range possibleFiles {
			if _, err := os.Stat(file); err == nil {
				configFile = file
				break
			}
		}

		if configFile == "" {
			return config.DefaultConfig(), nil
		}
	}

	return config.LoadConfigFromFile(configFile)
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nReceived signal, shutting down gracefully...")
		cancel()
	}()

	return ctx, cancel
}
