package cache

import (
	"context"
	"errors"
)

// ErrCacheMiss 快取中沒有該場次
var ErrCacheMiss = errors.New("seat cache miss")

// SeatCache 剩餘名額的顯示用快取。
// 名額上限的判斷永遠以資料庫交易為準，這裡的值只用於列表與詳情顯示。
type SeatCache interface {
	GetAvailable(ctx context.Context, eventID int) (int, error)
	SetAvailable(ctx context.Context, eventID int, available int) error
	Invalidate(ctx context.Context, eventID int) error
}
