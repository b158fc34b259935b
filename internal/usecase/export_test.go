package usecase

import "time"

// SetClock replaces the clock and ID source used to stamp catalogs.
func (uc *ScanRepositoryUseCase) SetClock(now func() time.Time, newID func() string) {
	uc.now = now
	uc.newID = newID
}
