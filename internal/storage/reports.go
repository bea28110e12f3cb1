package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// UploadTillReport arquiva o relatório Z de fechamento de caixa como JSON,
// particionado por tenant/filial/dia. Devolve o caminho do objeto.
func (c *Client) UploadTillReport(ctx context.Context, tenantKey, branchCode, sessionID string, closedAt time.Time, report any) (string, error) {
	payload, err := json.Marshal(report)
	if err != nil {
		return "", fmt.Errorf("falha ao serializar relatório de caixa: %w", err)
	}

	objectName := fmt.Sprintf("till-reports/%s/%s/%s/%s.json", tenantKey, branchCode, closedAt.UTC().Format("2006-01-02"), sessionID)
	if _, err := c.UploadObject(ctx, objectName, "application/json", int64(len(payload)), bytes.NewReader(payload)); err != nil {
		return "", err
	}

	return objectName, nil
}
