// README: Common value objects shared across modules.
package types

import "github.com/google/uuid"

// ID identifies bookings, quotes, patients and nurses. Firebase UIDs and
// generated UUIDs both fit.
type ID string

func NewID() ID {
	return ID(uuid.NewString())
}

func (id ID) String() string {
	return string(id)
}
