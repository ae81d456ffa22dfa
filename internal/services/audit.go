package services

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strings"

	"event-ticketing-console/internal/middleware"
	"event-ticketing-console/internal/models"
)

// AuditRepository stores console audit entries
type AuditRepository interface {
	Create(ctx context.Context, entry *models.AuditLog) error
	ListByEvent(ctx context.Context, eventID, limit, offset int) ([]models.AuditLog, int, error)
}

// MaxAuditPageSize bounds a page of audit entries
const MaxAuditPageSize = 100

// AuditService handles audit logging operations
type AuditService struct {
	auditRepo AuditRepository
}

// NewAuditService creates a new audit service
func NewAuditService(auditRepo AuditRepository) *AuditService {
	return &AuditService{auditRepo: auditRepo}
}

// LogAction records an organizer action on an event
func (s *AuditService) LogAction(ctx context.Context, r *http.Request, eventID int, action string, details interface{}) error {
	var detailsJSON json.RawMessage
	if details != nil {
		b, err := json.Marshal(details)
		if err != nil {
			return err
		}
		detailsJSON = b
	}

	entry := &models.AuditLog{
		EventID:   eventID,
		Action:    action,
		Details:   detailsJSON,
		IPAddress: getClientIP(r),
		UserAgent: r.UserAgent(),
		RequestID: middleware.GetRequestID(r.Context()),
	}

	return s.auditRepo.Create(ctx, entry)
}

// GetAuditLogs retrieves a page of an event's audit log
func (s *AuditService) GetAuditLogs(ctx context.Context, eventID, page, limit int) ([]models.AuditLog, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > MaxAuditPageSize {
		limit = MaxAuditPageSize
	}
	return s.auditRepo.ListByEvent(ctx, eventID, limit, (page-1)*limit)
}

func getClientIP(r *http.Request) string {
	// X-Forwarded-For can contain multiple IPs, take the first one
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}

	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}

	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
