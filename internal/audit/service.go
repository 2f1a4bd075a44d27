package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tech-arch1tect/archive-inspector/internal/logging"
)

// Service appends one JSON line per audit event. Once the current file
// reaches maxSizeBytes it is renamed to <base>-<seq><ext> and a new one is
// started. A disabled Service drops every event.
type Service struct {
	logger       *logging.Logger
	fileWriter   *os.File
	writeMutex   sync.Mutex
	enabled      bool
	logPath      string
	maxSizeBytes int64
	seqNum       int
}

type AuditEvent struct {
	Timestamp     time.Time      `json:"timestamp"`
	EventType     string         `json:"event_type"`
	Severity      string         `json:"severity"`
	Success       bool           `json:"success"`
	RequestID     string         `json:"request_id,omitempty"`
	ClientIP      string         `json:"client_ip,omitempty"`
	ArchiveName   string         `json:"archive_name,omitempty"`
	TargetName    string         `json:"target_name,omitempty"`
	FailureReason string         `json:"failure_reason,omitempty"`
	DurationMs    int64          `json:"duration_ms,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

func NewService(enabled bool, logFilePath string, maxSizeBytes int64, logger *logging.Logger) (*Service, error) {
	if !enabled {
		return &Service{enabled: false}, nil
	}

	if logFilePath == "" {
		logFilePath = "/var/log/archive-inspector/audit.jsonl"
	}

	if err := os.MkdirAll(filepath.Dir(logFilePath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create audit log directory: %w", err)
	}

	service := &Service{
		logger:       logger.With(zap.String("service", "audit")),
		enabled:      true,
		logPath:      logFilePath,
		maxSizeBytes: maxSizeBytes,
	}
	service.seqNum = service.lastRotatedSeq()

	if err := service.openFile(); err != nil {
		return nil, err
	}

	service.logger.Info("audit log service initialized",
		zap.String("path", logFilePath),
		zap.Int64("max_size_bytes", maxSizeBytes),
	)
	return service, nil
}

func (s *Service) rotatedPath(seq int) string {
	ext := filepath.Ext(s.logPath)
	return fmt.Sprintf("%s-%d%s", strings.TrimSuffix(s.logPath, ext), seq, ext)
}

func (s *Service) lastRotatedSeq() int {
	seq := 0
	for {
		if _, err := os.Stat(s.rotatedPath(seq + 1)); err != nil {
			return seq
		}
		seq++
	}
}

func (s *Service) openFile() error {
	file, err := os.OpenFile(s.logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open audit log file %s: %w", s.logPath, err)
	}
	s.fileWriter = file
	return nil
}

func (s *Service) rotateIfNeeded() {
	if s.maxSizeBytes <= 0 || s.fileWriter == nil {
		return
	}

	info, err := s.fileWriter.Stat()
	if err != nil {
		s.logger.Warn("failed to stat audit log file", zap.Error(err))
		return
	}
	if info.Size() < s.maxSizeBytes {
		return
	}

	if err := s.fileWriter.Close(); err != nil {
		s.logger.Warn("failed to close audit log file during rotation", zap.Error(err))
	}
	s.fileWriter = nil

	s.seqNum++
	rotated := s.rotatedPath(s.seqNum)
	if err := os.Rename(s.logPath, rotated); err != nil {
		s.logger.Error("failed to rotate audit log file",
			zap.String("from", s.logPath),
			zap.String("to", rotated),
			zap.Error(err),
		)
	} else {
		s.logger.Info("rotated audit log file", zap.String("rotated_to", rotated))
	}

	if err := s.openFile(); err != nil {
		s.logger.Error("failed to reopen audit log file", zap.Error(err))
	}
}

func (s *Service) Log(event AuditEvent) {
	if !s.enabled {
		return
	}

	s.writeMutex.Lock()
	defer s.writeMutex.Unlock()

	if s.fileWriter == nil {
		if err := s.openFile(); err != nil {
			s.logger.Error("failed to open audit log file", zap.Error(err))
			return
		}
	}

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	event.Severity = severityFor(event)

	jsonData, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("failed to marshal audit event", zap.Error(err))
		return
	}

	if _, err := s.fileWriter.Write(append(jsonData, '\n')); err != nil {
		s.logger.Error("failed to write audit event", zap.Error(err))
		return
	}

	s.rotateIfNeeded()
}

func (s *Service) LogInspection(requestID, clientIP, archiveName, targetName string, success bool, failureReason string, duration time.Duration, metadata map[string]any) {
	s.Log(AuditEvent{
		EventType:     EventArchiveInspect,
		RequestID:     requestID,
		ClientIP:      clientIP,
		ArchiveName:   archiveName,
		TargetName:    targetName,
		Success:       success,
		FailureReason: failureReason,
		DurationMs:    duration.Milliseconds(),
		Metadata:      metadata,
	})
}

func (s *Service) LogRejection(requestID, clientIP, archiveName, reason string) {
	s.Log(AuditEvent{
		EventType:     EventArchiveRejected,
		RequestID:     requestID,
		ClientIP:      clientIP,
		ArchiveName:   archiveName,
		Success:       false,
		FailureReason: reason,
	})
}

func (s *Service) Close() error {
	if !s.enabled {
		return nil
	}

	s.writeMutex.Lock()
	defer s.writeMutex.Unlock()

	if s.fileWriter != nil {
		err := s.fileWriter.Close()
		s.fileWriter = nil
		return err
	}
	return nil
}

func (s *Service) IsEnabled() bool {
	return s.enabled
}
