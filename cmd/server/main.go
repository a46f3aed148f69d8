package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"gopkg.in/yaml.v3"

	"github.com/mobisense-org/cognitive-workflow/internal/cleanup"
	"github.com/mobisense-org/cognitive-workflow/internal/handlers"
	"github.com/mobisense-org/cognitive-workflow/internal/llm"
	"github.com/mobisense-org/cognitive-workflow/internal/metrics"
	"github.com/mobisense-org/cognitive-workflow/internal/queue"
	"github.com/mobisense-org/cognitive-workflow/internal/storage"
	"github.com/mobisense-org/cognitive-workflow/internal/transcription"
)

// Config represents the application configuration
type Config struct {
	Server struct {
		Port int    `yaml:"port"`
		Host string `yaml:"host"`
	} `yaml:"server"`

	Workers struct {
		Count int `yaml:"count"`
	} `yaml:"workers"`

	Whisper struct {
		Model string `yaml:"model"`
	} `yaml:"whisper"`

	Diarization struct {
		Backend     string `yaml:"backend"` // pyannote or nemo
		ScriptDir   string `yaml:"script_dir"`
		MinSpeakers int    `yaml:"min_speakers"`
		MaxSpeakers int    `yaml:"max_speakers"`
	} `yaml:"diarization"`

	LLM struct {
		Endpoint        string  `yaml:"endpoint"`
		APIKeyEnv       string  `yaml:"api_key_env"`
		SummarizerModel string  `yaml:"summarizer_model"`
		JudgeModel      string  `yaml:"judge_model"`
		MaxTokens       int     `yaml:"max_tokens"`
		Temperature     float64 `yaml:"temperature"`
	} `yaml:"llm"`

	Storage struct {
		TempDir   string `yaml:"temp_dir"`
		OutputDir string `yaml:"output_dir"`
		Database  string `yaml:"database"`
	} `yaml:"storage"`

	Drive struct {
		CredentialsFile string `yaml:"credentials_file"`
		TokenFile       string `yaml:"token_file"`
		FolderName      string `yaml:"folder_name"`
	} `yaml:"drive"`

	Cleanup struct {
		IntervalMinutes int `yaml:"interval_minutes"`
		MaxAgeHours     int `yaml:"max_age_hours"`
	} `yaml:"cleanup"`

	Limits struct {
		MaxFileSizeMB int `yaml:"max_file_size_mb"`
	} `yaml:"limits"`
}

func main() {
	config, err := loadConfig("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := cleanup.EnsureTempDirExists(config.Storage.TempDir); err != nil {
		log.Fatalf("Failed to create temp directory: %v", err)
	}
	if err := os.MkdirAll(config.Storage.OutputDir, 0755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}

	// Custom logger setup
	logBuffer := &LogBuffer{
		lines: make([]string, 0, 1000),
	}
	multiWriter := io.MultiWriter(os.Stdout, logBuffer)
	log.SetOutput(multiWriter)

	log.Println("Initializing components...")

	evaluator := metrics.NewEvaluator()

	// Workflow archive storage
	localStore := storage.NewLocalStore(config.Storage.OutputDir)

	db, err := storage.NewWorkflowDB(config.Storage.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Google Drive client (optional - may fail if credentials not set up)
	var driveClient *storage.DriveClient
	if _, err := os.Stat(config.Drive.CredentialsFile); err == nil {
		driveClient, err = storage.NewDriveClient(
			config.Drive.CredentialsFile,
			config.Drive.TokenFile,
			config.Drive.FolderName,
		)
		if err != nil {
			log.Printf("WARNING: Google Drive not available: %v", err)
			log.Println("Reports will only be saved locally")
			driveClient = nil
		} else {
			log.Println("Google Drive integration enabled")
		}
	} else {
		log.Println("Google Drive credentials not found - saving locally only")
	}

	// Workflow collaborators are heavy to construct, so the orchestrator
	// builds them lazily on the first job via this factory.
	factory := func() (*queue.Components, error) {
		transcriber, err := transcription.NewWhisperTranscriber(config.Whisper.Model, config.Storage.TempDir)
		if err != nil {
			return nil, err
		}

		var diarizer queue.Diarizer
		d, err := transcription.NewDiarizer(
			config.Diarization.Backend,
			config.Diarization.ScriptDir,
			config.Diarization.MinSpeakers,
			config.Diarization.MaxSpeakers,
		)
		if err != nil {
			log.Printf("WARNING: diarization not available: %v", err)
		} else {
			diarizer = d
		}

		client := llm.NewClient(config.LLM.Endpoint, os.Getenv(config.LLM.APIKeyEnv))
		return &queue.Components{
			Transcriber: transcriber,
			Diarizer:    diarizer,
			Summarizer:  llm.NewSummarizer(client, config.LLM.SummarizerModel, config.LLM.MaxTokens, config.LLM.Temperature, evaluator),
			Judge:       llm.NewJudge(client, config.LLM.JudgeModel, config.LLM.MaxTokens, config.LLM.Temperature, evaluator),
		}, nil
	}

	orchestrator := queue.NewOrchestrator(
		config.Workers.Count,
		factory,
		&queue.Archive{Local: localStore, Drive: driveClient, DB: db},
		evaluator,
	)
	orchestrator.Start()

	// Retention sweep and temp-file cleanup on one interval scheduler
	scheduler := cleanup.NewScheduler(
		orchestrator,
		config.Storage.TempDir,
		time.Duration(config.Cleanup.IntervalMinutes)*time.Minute,
		time.Duration(config.Cleanup.MaxAgeHours)*time.Hour,
	)
	scheduler.Start()
	defer scheduler.Stop()

	app := fiber.New(fiber.Config{
		BodyLimit: config.Limits.MaxFileSizeMB * 1024 * 1024,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))

	flowHandler := handlers.NewFlowHandler(orchestrator, config.Storage.TempDir, config.Limits.MaxFileSizeMB)
	statusHandler := handlers.NewStatusHandler(orchestrator)
	progressHandler := handlers.NewProgressHandler(orchestrator)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	app.Post("/flow", flowHandler.Handle)
	app.Get("/job/:id", statusHandler.Handle)
	app.Get("/ws/job/:id", websocket.New(progressHandler.Handle))

	app.Get("/workflows", func(c *fiber.Ctx) error {
		workflows, err := db.ListWorkflows(50)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(workflows)
	})

	app.Get("/metrics", func(c *fiber.Ctx) error {
		return c.JSON(evaluator.Report())
	})

	app.Get("/logs", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"logs": logBuffer.GetLogs(),
		})
	})

	addr := fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)
	log.Printf("Server starting on %s", addr)
	log.Println("Endpoints:")
	log.Println("   POST /flow        - Submit audio file for processing")
	log.Println("   GET  /job/:id     - Check job status and results")
	log.Println("   GET  /ws/job/:id  - Stream job progress")
	log.Println("   GET  /workflows   - List archived workflows")
	log.Println("   GET  /metrics     - Performance report")
	log.Println("   GET  /logs        - View server logs")
	log.Println("   GET  /health      - Health check")

	// Graceful shutdown
	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		log.Println("Shutting down gracefully...")
		app.Shutdown()
	}()

	if err := app.Listen(addr); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// LogBuffer captures logs in memory
type LogBuffer struct {
	lines []string
	mu    sync.Mutex
}

func (lb *LogBuffer) Write(p []byte) (n int, err error) {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	lb.lines = append(lb.lines, string(p))

	// Keep last 1000 lines
	if len(lb.lines) > 1000 {
		lb.lines = lb.lines[len(lb.lines)-1000:]
	}

	return len(p), nil
}

func (lb *LogBuffer) GetLogs() []string {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	logs := make([]string, len(lb.lines))
	copy(logs, lb.lines)
	return logs
}

// loadConfig loads configuration from YAML file
func loadConfig(path string) (*Config, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := yaml.Unmarshal(file, &config); err != nil {
		return nil, err
	}

	return &config, nil
}
