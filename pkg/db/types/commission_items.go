package dbtypes

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/dataflexhq/dataflex-backend/pkg/enums"
	"github.com/google/uuid"
)

// CommissionItemRef is the tagged reference a withdrawal snapshot stores for
// each commissionable event. The type discriminator decides which table the
// id resolves against.
type CommissionItemRef struct {
	Type enums.CommissionItemType `json:"type"`
	ID   uuid.UUID                `json:"id"`
}

// CommissionItemList is persisted as a JSONB array on the withdrawals row.
type CommissionItemList []CommissionItemRef

func (l *CommissionItemList) Scan(src any) error {
	if src == nil {
		*l = CommissionItemList{}
		return nil
	}

	var raw []byte
	switch v := src.(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("CommissionItemList: unsupported Scan type %T", src)
	}

	if len(raw) == 0 {
		*l = CommissionItemList{}
		return nil
	}

	var out []CommissionItemRef
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("CommissionItemList: decode: %w", err)
	}
	*l = CommissionItemList(out)
	return nil
}

func (l CommissionItemList) Value() (driver.Value, error) {
	if l == nil {
		l = CommissionItemList{}
	}
	encoded, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("CommissionItemList: encode: %w", err)
	}
	return string(encoded), nil
}

// IDsOf collects the ids of every ref matching the given type.
func (l CommissionItemList) IDsOf(itemType enums.CommissionItemType) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(l))
	for _, ref := range l {
		if ref.Type == itemType {
			ids = append(ids, ref.ID)
		}
	}
	return ids
}
