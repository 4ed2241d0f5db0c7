package highlight

import (
	"sync"
	"time"
)

// articleLock は記事ごとのミューテックスと最終使用時刻を保持する。
// holdersは取得中(待機中を含む)のゴルーチン数。globalMuの保護下で更新する。
type articleLock struct {
	mu       sync.Mutex
	lastUsed time.Time
	holders  int
}

// lockManager は記事単位の排他制御を管理する。
// 同一記事に対するハイライトの作成・更新・削除を直列化し、
// 範囲検証と書き込みの間で本文が差し替わる競合を防ぐ。
type lockManager struct {
	globalMu sync.RWMutex
	locks    map[string]*articleLock
}

// newLockManager は新しいlockManagerを生成する。
func newLockManager() *lockManager {
	return &lockManager{
		locks: make(map[string]*articleLock),
	}
}

// withLock は記事ロックを保持した状態でfnを実行する。
func (lm *lockManager) withLock(articleID string, fn func() error) error {
	l := lm.acquire(articleID)
	defer lm.release(l)

	l.mu.Lock()
	defer l.mu.Unlock()
	return fn()
}

// acquire は記事のロックエントリを取得または作成し、保持数を加算する。
// 保持数が正の間はcleanupがエントリを削除しないため、
// 長時間の操作中にロックが差し替わることはない。
func (lm *lockManager) acquire(articleID string) *articleLock {
	lm.globalMu.Lock()
	defer lm.globalMu.Unlock()

	l, exists := lm.locks[articleID]
	if !exists {
		l = &articleLock{}
		lm.locks[articleID] = l
	}
	l.lastUsed = time.Now()
	l.holders++
	return l
}

// release は保持数を減算し、最終使用時刻を更新する。
func (lm *lockManager) release(l *articleLock) {
	lm.globalMu.Lock()
	defer lm.globalMu.Unlock()

	l.holders--
	l.lastUsed = time.Now()
}

// lockCount は現在管理されているロックのエントリ数を返す。テスト用。
func (lm *lockManager) lockCount() int {
	lm.globalMu.RLock()
	defer lm.globalMu.RUnlock()
	return len(lm.locks)
}

// cleanup は使用中でなく、最終使用時刻がttlを超えたロックを削除する。
// 記事削除後に残ったエントリを回収する。
func (lm *lockManager) cleanup(ttl time.Duration) {
	lm.globalMu.Lock()
	defer lm.globalMu.Unlock()

	now := time.Now()
	for articleID, l := range lm.locks {
		if l.holders == 0 && now.Sub(l.lastUsed) > ttl {
			delete(lm.locks, articleID)
		}
	}
}
