package service

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/ruchikageeminda97/tms-api/internal/repository"
	appErrors "github.com/ruchikageeminda97/tms-api/pkg/errors"
)

// wellFormedPaymentID matches identifiers the allocator could have produced.
var wellFormedPaymentID = regexp.MustCompile(`^PAY\d+$`)

// Defaults written into class rows by the repair job. Zero-ish values that
// keep the row readable without inventing data.
const (
	repairDefaultClassName = "Unnamed Class"
	repairDefaultSubjectID = "UNKNOWN"
	repairDefaultDay       = "Monday"
	repairDefaultTime      = "00:00"
	repairDefaultCapacity  = 0
	repairDefaultStatus    = "Ongoing"
)

type classRepairStore interface {
	ListRaw(ctx context.Context) ([]repository.RawClass, error)
	BackfillFields(ctx context.Context, classID string, fields map[string]interface{}) error
}

type paymentRepairStore interface {
	ListRaw(ctx context.Context) ([]repository.RawPayment, error)
	ReassignID(ctx context.Context, rowID int64, paymentID string) error
}

// RepairReport summarizes one repair pass.
type RepairReport struct {
	Scanned  int `json:"scanned"`
	Repaired int `json:"repaired"`
}

// MaintenanceService runs the idempotent data repair jobs. A bad row is
// logged and skipped so one anomaly never aborts the scan.
type MaintenanceService struct {
	classes  classRepairStore
	payments paymentRepairStore
	logger   *zap.Logger
}

// NewMaintenanceService constructs the maintenance service.
func NewMaintenanceService(classes classRepairStore, payments paymentRepairStore, logger *zap.Logger) *MaintenanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MaintenanceService{classes: classes, payments: payments, logger: logger}
}

// RepairClasses backfills missing class fields with fixed defaults. Present
// values are never touched, so reruns are no-ops.
func (s *MaintenanceService) RepairClasses(ctx context.Context) (*RepairReport, error) {
	rows, err := s.classes.ListRaw(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to scan classes")
	}

	report := &RepairReport{Scanned: len(rows)}
	for _, row := range rows {
		fields := missingClassFields(row)
		if len(fields) == 0 {
			continue
		}
		if err := s.classes.BackfillFields(ctx, row.ClassID, fields); err != nil {
			s.logger.Warn("class repair failed, continuing",
				zap.String("class_id", row.ClassID), zap.Error(err))
			continue
		}
		s.logger.Info("class repaired",
			zap.String("class_id", row.ClassID), zap.Int("fields", len(fields)))
		report.Repaired++
	}
	return report, nil
}

// RepairPayments reassigns missing, malformed or duplicate payment
// identifiers to fresh sequential ones. Ids seen earlier in the pass count
// as taken, so the pass never introduces a new duplicate.
func (s *MaintenanceService) RepairPayments(ctx context.Context) (*RepairReport, error) {
	rows, err := s.payments.ListRaw(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to scan payments")
	}

	seen := make(map[string]bool, len(rows))
	highest := 0
	for _, row := range rows {
		if row.PaymentID == nil {
			continue
		}
		id := *row.PaymentID
		if !wellFormedPaymentID.MatchString(id) {
			continue
		}
		if n, err := strconv.Atoi(strings.TrimPrefix(id, paymentIDPrefix)); err == nil && n > highest {
			highest = n
		}
	}

	report := &RepairReport{Scanned: len(rows)}
	next := highest + 1
	for _, row := range rows {
		needsID := row.PaymentID == nil ||
			!wellFormedPaymentID.MatchString(*row.PaymentID) ||
			seen[*row.PaymentID]
		if !needsID {
			seen[*row.PaymentID] = true
			continue
		}

		var fresh string
		for {
			fresh = fmt.Sprintf("%s%03d", paymentIDPrefix, next)
			next++
			if !seen[fresh] {
				break
			}
		}

		if err := s.payments.ReassignID(ctx, row.RowID, fresh); err != nil {
			s.logger.Warn("payment repair failed, continuing",
				zap.Int64("row_id", row.RowID), zap.Error(err))
			continue
		}
		s.logger.Info("payment id reassigned",
			zap.Int64("row_id", row.RowID), zap.String("payment_id", fresh))
		seen[fresh] = true
		report.Repaired++
	}
	return report, nil
}

func missingClassFields(row repository.RawClass) map[string]interface{} {
	fields := map[string]interface{}{}
	if row.ClassName == nil {
		fields["class_name"] = repairDefaultClassName
	}
	if row.SubjectID == nil {
		fields["subject_id"] = repairDefaultSubjectID
	}
	if row.Day == nil {
		fields["day"] = repairDefaultDay
	}
	if row.StartTime == nil {
		fields["start_time"] = repairDefaultTime
	}
	if row.EndTime == nil {
		fields["end_time"] = repairDefaultTime
	}
	if row.Capacity == nil {
		fields["capacity"] = repairDefaultCapacity
	}
	if row.Status == nil {
		fields["status"] = repairDefaultStatus
	}
	return fields
}
