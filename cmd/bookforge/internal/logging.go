package internal

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"
)

// SetupLogging tees the standard logger to a per-run log file under
// ~/.bookforge/logs, named after the subcommand and book project
func SetupLogging(subcommand, bookRoot string) error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return err
	}

	logDir := filepath.Join(homeDir, ".bookforge", "logs")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return err
	}

	bookName := SanitizeName(filepath.Base(bookRoot))
	hash := sha1.Sum([]byte(bookRoot))
	suffix := hex.EncodeToString(hash[:])[:8]
	timestamp := time.Now().Format("20060102-150405")
	filename := fmt.Sprintf("bookforge-%s-%s-%s-%s.log", subcommand, bookName, timestamp, suffix)
	logPath := filepath.Join(logDir, filename)

	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}

	log.SetOutput(io.MultiWriter(os.Stderr, logFile))
	log.Printf("Log file: %s", logPath)
	return nil
}
