package media

import (
	"context"
	"errors"
	"time"

	"civic-project-system/internal/global/objectstore"
	"civic-project-system/internal/global/response"
)

const presignTTL = 15 * time.Minute

// Presign 为前端直传签发 PUT 地址，上传完成后以 Ref 提交
func (m *Manager) Presign(ctx context.Context, name, contentType string, size int64) (*objectstore.PresignedUpload, error) {
	err := m.validate(1, func(int) (string, string, int64) { return name, contentType, size })
	if err != nil {
		return nil, err
	}
	cctx, cancel := m.call(ctx)
	defer cancel()
	up, err := m.objects.Presign(cctx, name, contentType, presignTTL)
	switch {
	case errors.Is(err, objectstore.ErrUnsupported):
		return nil, response.ErrBadRequest.WithMessage("Direct upload is not supported by the current storage")
	case err != nil:
		return nil, storeErr(err)
	}
	return up, nil
}
