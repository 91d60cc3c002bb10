// Package logging emits one JSON object per line. The fixed little API
// (Info, Error, Fatal, each taking a Fields map) keeps call sites
// uniform without pulling in a logging framework.
package logging

import (
	"encoding/json"
	"log"
	"os"
	"time"
)

// Fields carries structured context for a single log line.
type Fields map[string]interface{}

func emit(level, msg string, err error, fields Fields) {
	entry := make(map[string]interface{}, len(fields)+4)
	for k, v := range fields {
		entry[k] = v
	}
	entry["level"] = level
	entry["ts"] = time.Now().UTC().Format(time.RFC3339)
	entry["msg"] = msg
	if err != nil {
		entry["error"] = err.Error()
	}
	b, jerr := json.Marshal(entry)
	if jerr != nil {
		// fallback to plain logging
		log.Printf("%s: %s (%v)", level, msg, entry)
		return
	}
	log.Println(string(b))
}

// Info logs an informational message with optional fields.
func Info(msg string, fields Fields) {
	emit("info", msg, nil, fields)
}

// Error logs an error message; the error text lands in the "error" field.
func Error(msg string, err error, fields Fields) {
	emit("error", msg, err, fields)
}

// Fatal logs and exits the process.
func Fatal(msg string, err error, fields Fields) {
	emit("fatal", msg, err, fields)
	os.Exit(1)
}
