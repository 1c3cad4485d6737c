package managers

import (
	"rewear-server/internal/interfaces"
)

type DatabaseMgr interface {
	GetPool() interfaces.PgxPoolIface
}

// DatabaseManager is a manager that handles all database operations.
type DatabaseManager struct {
	Pool interfaces.PgxPoolIface
}

// GetPool returns the database pool.
func (dm *DatabaseManager) GetPool() interfaces.PgxPoolIface {
	return dm.Pool
}

// NewDatabaseManager creates a new DatabaseManager around the given pool.
func NewDatabaseManager(pool interfaces.PgxPoolIface) DatabaseMgr {
	return &DatabaseManager{Pool: pool}
}
