package service

import (
	"context"
	"strings"

	"github.com/vidtube/backend/internal/core/domain"
	"github.com/vidtube/backend/internal/core/ports"
	"github.com/vidtube/backend/internal/pkg/metrics"
)

type field struct {
	name  string
	value string
}

// requireNonBlank fails with a validation error naming every blank field.
func requireNonBlank(fields ...field) error {
	var missing []string
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name+" is required")
		}
	}
	if len(missing) > 0 {
		return domain.NewValidationError(missing...)
	}
	return nil
}

// uploadAsset stores file in folder and tags failures as upstream errors.
func uploadAsset(ctx context.Context, store ports.MediaStore, folder ports.MediaFolder, file ports.Upload) (string, error) {
	url, err := store.Upload(ctx, folder, file)
	if err != nil {
		metrics.MediaUploadsTotal.WithLabelValues(string(folder), "error").Inc()
		return "", domain.Upstream("failed to upload "+strings.TrimSuffix(string(folder), "s"), err)
	}
	metrics.MediaUploadsTotal.WithLabelValues(string(folder), "ok").Inc()
	return url, nil
}

// authorizeOwner runs the ownership check and records denials.
func authorizeOwner(resource string, requesterID string, owned domain.Owned) error {
	err := domain.Authorize(requesterID, owned)
	if domain.KindOf(err) == domain.KindForbidden {
		metrics.OwnershipDenialsTotal.WithLabelValues(resource).Inc()
	}
	return err
}
