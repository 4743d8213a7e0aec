package core

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/JonMunkholm/CompanyPortal/internal/logging"
	"github.com/JonMunkholm/CompanyPortal/internal/normalize"
)

// PlanPurge computes the reconciliation of one submitter's records, given in
// stored order. The first record of each normalized (name, website) key
// survives and every later one is deleted. Survivors are re-normalized and
// re-classified against snap only; other submitters' staging records are not
// consulted. Survivors that do not change are left out of the batch.
func PlanPurge(records []Record, snap *Snapshot) Batch {
	var batch Batch
	seen := make(map[normalize.Key]bool, len(records))

	for _, rec := range records {
		key := normalize.KeyOf(rec.Name, rec.Website)
		if seen[key] {
			batch.Deletes = append(batch.Deletes, rec.ID)
			continue
		}
		seen[key] = true

		updated := rec
		updated.Renormalize()
		updated.SetStatus(Classify(CheckMainRegistry(snap, key)), "")

		if !sameClassification(rec, updated) {
			batch.Updates = append(batch.Updates, updated)
		}
	}

	return batch
}

func sameClassification(a, b Record) bool {
	return a.NormalizedName == b.NormalizedName &&
		a.NormalizedWebsite == b.NormalizedWebsite &&
		a.Status == b.Status &&
		(a.DuplicateOwner == nil) == (b.DuplicateOwner == nil)
}

// PurgeUserDuplicates collapses the submitter's duplicate records and
// refreshes the status of the survivors. The changes are applied atomically:
// on error nothing has changed.
func (s *Service) PurgeUserDuplicates(ctx context.Context, submitter string, snap *Snapshot) (PurgeResult, error) {
	recs, err := s.store.ListBySubmitter(ctx, submitter)
	if err != nil {
		return PurgeResult{}, fmt.Errorf("list records: %w", err)
	}

	batch := PlanPurge(recs, snap)
	result := PurgeResult{
		Removed: len(batch.Deletes),
		Updated: len(batch.Updates),
		BatchID: uuid.NewString(),
	}
	logger := logging.WithFields(ctx, "batch_id", result.BatchID, "submitter", submitter)

	if batch.Empty() {
		logger.Info("purge found nothing to change", "records", len(recs))
		return result, nil
	}

	if err := s.store.ApplyBatch(ctx, batch); err != nil {
		logger.Error("purge failed, no changes applied", "error", err)
		return PurgeResult{}, fmt.Errorf("apply purge: %w", err)
	}

	logger.Info("purge completed",
		"records", len(recs),
		"removed", result.Removed,
		"updated", result.Updated,
	)
	s.logAudit(ctx, AuditEvent{
		Action:       ActionPurge,
		Actor:        submitter,
		RowsAffected: result.Removed,
		BatchID:      result.BatchID,
		Detail:       fmt.Sprintf("updated=%d", result.Updated),
	})
	return result, nil
}
