package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const (
	DefaultSnapshotsSubDir = "snapshots"
	DefaultExportsSubDir   = "exports"
	DefaultDatasetSubDir   = "dataset"
)

const (
	defaultConfidenceThreshold = 60.0
	defaultFaceSizeWidth       = 200
	defaultFaceSizeHeight      = 200
	defaultAlertCooldownSecs   = 5
	defaultCameraWidth         = 640
	defaultCameraHeight        = 480
	defaultExportQueueSize     = 50
	defaultNumExportWorkers    = 2
)

// Sessions lists the valid session labels used to group attendance records
var Sessions = []string{"Morning", "Afternoon", "Evening"}

type Config struct {
	// database path
	DatabasePath string

	// media storage configuration
	MediaStoragePath string // primary root for generated assets (snapshots, exports, dataset)
	SnapshotsPath    string // full-calculated path for alert snapshots
	ExportsPath      string // full-calculated path for CSV exports
	DatasetPath      string // full-calculated path for labeled training images

	// recognition model artifacts
	ModelPath    string // trained LBPH model (YAML)
	LabelMapPath string // label -> roll number mapping (JSON)
	CascadePath  string // Haar cascade XML for face detection

	// camera settings
	CameraIndex  int
	CameraWidth  int
	CameraHeight int

	// recognition session settings
	ConfidenceThreshold float64
	FaceSizeWidth       int
	FaceSizeHeight      int
	AlertCooldown       time.Duration
	SessionLabel        string
	MaxSessionDuration  time.Duration // 0 means unlimited
	ShowPreview         bool

	// export worker settings
	ExportQueueSize  int
	NumExportWorkers int

	// dashboard auth
	JWTSecret         string
	BootstrapUsername string
	BootstrapPassword string
}

func getEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvIntOrDefault(envVar string, defaultVal int) int {
	valStr := os.Getenv(envVar)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil {
		log.Printf("Warning: Invalid %s '%s'. Using default %d. Error: %v", envVar, valStr, defaultVal, err)
		return defaultVal
	}
	return val
}

func getEnvFloatOrDefault(envVar string, defaultVal float64) float64 {
	valStr := os.Getenv(envVar)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.ParseFloat(valStr, 64)
	if err != nil || val <= 0 {
		log.Printf("Warning: Invalid %s '%s'. Using default %g. Error: %v", envVar, valStr, defaultVal, err)
		return defaultVal
	}
	return val
}

// ValidSession reports whether label is one of the configured session labels
func ValidSession(label string) bool {
	for _, s := range Sessions {
		if s == label {
			return true
		}
	}
	return false
}

func LoadConfig() (Config, error) {
	dbPath := getEnvOrDefault("DATABASE_PATH", "attendance.db")

	mediaStorage := getEnvOrDefault("MEDIA_STORAGE_PATH", filepath.Join(".", "media_storage"))
	absMediaStorage, err := filepath.Abs(mediaStorage)
	if err != nil {
		return Config{}, fmt.Errorf("failed to get absolute path for media storage '%s': %w", mediaStorage, err)
	}

	snapshotsSubDir := getEnvOrDefault("SNAPSHOTS_SUBDIR", DefaultSnapshotsSubDir)
	absSnapshotsPath := filepath.Join(absMediaStorage, snapshotsSubDir)

	exportsSubDir := getEnvOrDefault("EXPORTS_SUBDIR", DefaultExportsSubDir)
	absExportsPath := filepath.Join(absMediaStorage, exportsSubDir)

	datasetSubDir := getEnvOrDefault("DATASET_SUBDIR", DefaultDatasetSubDir)
	absDatasetPath := filepath.Join(absMediaStorage, datasetSubDir)

	sessionLabel := getEnvOrDefault("SESSION_LABEL", "Morning")
	if !ValidSession(sessionLabel) {
		return Config{}, fmt.Errorf("invalid SESSION_LABEL '%s', must be one of %v", sessionLabel, Sessions)
	}

	cooldownSecs := getEnvIntOrDefault("ALERT_COOLDOWN_SECONDS", defaultAlertCooldownSecs)
	if cooldownSecs < 0 {
		return Config{}, fmt.Errorf("ALERT_COOLDOWN_SECONDS must not be negative")
	}

	maxSessionMinutes := getEnvIntOrDefault("MAX_SESSION_MINUTES", 0)
	if maxSessionMinutes < 0 {
		maxSessionMinutes = 0
	}

	cfg := Config{
		DatabasePath:        dbPath,
		MediaStoragePath:    absMediaStorage,
		SnapshotsPath:       absSnapshotsPath,
		ExportsPath:         absExportsPath,
		DatasetPath:         absDatasetPath,
		ModelPath:           getEnvOrDefault("MODEL_PATH", "./models/face_recognizer.yml"),
		LabelMapPath:        getEnvOrDefault("LABEL_MAP_PATH", "./models/student_label_map.json"),
		CascadePath:         getEnvOrDefault("CASCADE_PATH", "./models/haarcascade_frontalface_default.xml"),
		CameraIndex:         getEnvIntOrDefault("CAMERA_INDEX", 0),
		CameraWidth:         getEnvIntOrDefault("CAMERA_WIDTH", defaultCameraWidth),
		CameraHeight:        getEnvIntOrDefault("CAMERA_HEIGHT", defaultCameraHeight),
		ConfidenceThreshold: getEnvFloatOrDefault("CONFIDENCE_THRESHOLD", defaultConfidenceThreshold),
		FaceSizeWidth:       getEnvIntOrDefault("FACE_SIZE_WIDTH", defaultFaceSizeWidth),
		FaceSizeHeight:      getEnvIntOrDefault("FACE_SIZE_HEIGHT", defaultFaceSizeHeight),
		AlertCooldown:       time.Duration(cooldownSecs) * time.Second,
		SessionLabel:        sessionLabel,
		MaxSessionDuration:  time.Duration(maxSessionMinutes) * time.Minute,
		ShowPreview:         getEnvOrDefault("SHOW_PREVIEW", "false") == "true",
		ExportQueueSize:     getEnvIntOrDefault("EXPORT_QUEUE_SIZE", defaultExportQueueSize),
		NumExportWorkers:    getEnvIntOrDefault("NUM_EXPORT_WORKERS", defaultNumExportWorkers),
		JWTSecret:           getEnvOrDefault("JWT_SECRET", ""),
		BootstrapUsername:   getEnvOrDefault("BOOTSTRAP_OPERATOR_USERNAME", ""),
		BootstrapPassword:   getEnvOrDefault("BOOTSTRAP_OPERATOR_PASSWORD", ""),
	}

	return cfg, nil
}
