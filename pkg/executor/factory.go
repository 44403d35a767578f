package executor

import (
	"context"
	"fmt"
	"sync"
)

// Constructor - функция-конструктор исполнителя.
// Возвращает новый экземпляр (еще не подключенный к БД)
type Constructor func() Executor

// Factory - фабрика исполнителей: регистрация и создание backend'ов
type Factory struct {
	registry map[string]Constructor
	mu       sync.RWMutex
}

// NewFactory создает новую фабрику
func NewFactory() *Factory {
	return &Factory{
		registry: make(map[string]Constructor),
	}
}

// Register регистрирует конструктор backend'а для типа СУБД
func (f *Factory) Register(dbType string, constructor Constructor) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.registry[dbType] = constructor
}

// IsRegistered проверяет, зарегистрирован ли backend для типа СУБД
func (f *Factory) IsRegistered(dbType string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, ok := f.registry[dbType]
	return ok
}

// RegisteredTypes возвращает список зарегистрированных типов СУБД
func (f *Factory) RegisteredTypes() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	types := make([]string, 0, len(f.registry))
	for dbType := range f.registry {
		types = append(types, dbType)
	}
	return types
}

// Create создает и подключает исполнитель по конфигурации
func (f *Factory) Create(ctx context.Context, cfg Config) (Executor, error) {
	f.mu.RLock()
	constructor, ok := f.registry[cfg.Type]
	f.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown database type: %s (available types: %v)",
			cfg.Type, f.RegisteredTypes())
	}

	exec := constructor()
	if err := exec.Connect(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.Type, err)
	}

	return exec, nil
}

// ========== Global Factory ==========

var globalFactory = NewFactory()

// Register регистрирует backend в глобальной фабрике.
// Обычно вызывается в init() функциях backend-пакетов:
//
//	import _ "github.com/nurhachar-sibei/Datadeal/pkg/executor/sqlite"
func Register(dbType string, constructor Constructor) {
	globalFactory.Register(dbType, constructor)
}

// New создает и подключает исполнитель через глобальную фабрику
func New(ctx context.Context, cfg Config) (Executor, error) {
	return globalFactory.Create(ctx, cfg)
}

// IsRegistered проверяет регистрацию в глобальной фабрике
func IsRegistered(dbType string) bool {
	return globalFactory.IsRegistered(dbType)
}

// RegisteredTypes возвращает типы, зарегистрированные в глобальной фабрике
func RegisteredTypes() []string {
	return globalFactory.RegisteredTypes()
}
