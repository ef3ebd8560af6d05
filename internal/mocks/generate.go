// Package mocks provides mock implementations of the queue monitor repository ports.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for our repository interfaces.
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	workers := mocks.NewMockWorkerRepository(ctrl)
//	workers.EXPECT().GetByID(gomock.Any(), int64(1)).Return(worker, nil)
package mocks

// Generate mock for PushRepository interface from internal/core package.
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=push_repository_mock.go github.com/target/mmk-queue-monitor/internal/core PushRepository

// Generate mock for ExecRepository interface from internal/core package.
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=exec_repository_mock.go github.com/target/mmk-queue-monitor/internal/core ExecRepository

// Generate mock for WorkerRepository interface from internal/core package.
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=worker_repository_mock.go github.com/target/mmk-queue-monitor/internal/core WorkerRepository
