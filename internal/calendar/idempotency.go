package calendar

import (
	"fmt"
	"time"

	"go-gin-pd-registration/internal/model"

	"github.com/google/uuid"
)

var keyNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("pd-registration/calendar-sync"))

// IdempotencyKey 以 kind|event|user|generation 產生固定的 UUID。
// generation 區分同一使用者取消後再報名的不同次操作；零值時為 0。
func IdempotencyKey(kind model.SyncKind, eventID int, userID int, generation time.Time) uuid.UUID {
	var gen int64
	if !generation.IsZero() {
		gen = generation.UnixNano()
	}
	name := fmt.Sprintf("%s|%d|%d|%d", kind, eventID, userID, gen)
	return uuid.NewSHA1(keyNamespace, []byte(name))
}
