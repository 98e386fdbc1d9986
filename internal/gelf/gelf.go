package gelf

import (
	"encoding/json"
	"net"
	"os"
	"strings"
	"time"
)

// Writer sends GELF messages over UDP. It is a zapcore.WriteSyncer: each
// Write carries one JSON-encoded log entry, which is turned into one GELF
// message with the entry's fields as additional "_" fields.
type Writer struct {
	conn     net.Conn
	hostname string
	service  string
}

// New creates a GELF UDP writer connected to addr (e.g. "172.17.0.1:12201").
func New(addr, service string) (*Writer, error) {
	conn, err := net.Dial("udp", addr)
	if err != nil {
		return nil, err
	}

	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = "oxikpi-server"
	}

	return &Writer{conn: conn, hostname: hostname, service: service}, nil
}

// Syslog severities by zap level name.
var levels = map[string]int{
	"debug":  7,
	"info":   6,
	"warn":   4,
	"error":  3,
	"dpanic": 2,
	"panic":  2,
	"fatal":  2,
}

// Message converts one log line into a GELF 1.1 message.
func (w *Writer) Message(p []byte) map[string]any {
	line := strings.TrimRight(string(p), "\n")
	msg := map[string]any{
		"version":   "1.1",
		"host":      w.hostname,
		"timestamp": float64(time.Now().UnixNano()) / 1e9,
		"level":     6,
		"_service":  w.service,
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		msg["short_message"] = line
		return msg
	}

	msg["short_message"], _ = entry["msg"].(string)
	if lvl, ok := entry["level"].(string); ok {
		if n, ok := levels[lvl]; ok {
			msg["level"] = n
		}
	}
	if ts, ok := entry["ts"].(float64); ok {
		msg["timestamp"] = ts
	}
	if st, ok := entry["stacktrace"].(string); ok {
		msg["full_message"] = st
	}
	for k, v := range entry {
		switch k {
		case "msg", "level", "ts", "stacktrace":
			continue
		case "id":
			// "_id" is reserved by GELF.
			k = "field_id"
		}
		msg["_"+k] = v
	}
	if msg["short_message"] == "" {
		msg["short_message"] = "-"
	}
	return msg
}

// Write implements io.Writer. Each call sends one GELF message.
func (w *Writer) Write(p []byte) (int, error) {
	payload, err := json.Marshal(w.Message(p))
	if err != nil {
		return len(p), nil // don't fail the log call
	}

	// Fire-and-forget
	w.conn.Write(payload)
	return len(p), nil
}

// Sync implements zapcore.WriteSyncer. UDP writes are not buffered.
func (w *Writer) Sync() error { return nil }

func (w *Writer) Close() error { return w.conn.Close() }
