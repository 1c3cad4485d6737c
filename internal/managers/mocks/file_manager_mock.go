package mocks

import (
	"mime/multipart"

	"github.com/stretchr/testify/mock"

	"rewear-server/internal/schemas"
)

type MockFileManager struct {
	mock.Mock
}

func (m *MockFileManager) SaveImage(fileHeader *multipart.FileHeader, prefix string) (string, *schemas.CustomError) {
	args := m.Called(fileHeader, prefix)
	if err := args.Get(1); err != nil {
		return args.String(0), err.(*schemas.CustomError)
	}
	return args.String(0), nil
}

func (m *MockFileManager) UploadDir() string {
	args := m.Called()
	return args.String(0)
}
