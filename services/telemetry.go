package services

import (
	"math/rand"
	"sync"
	"time"
)

// TelemetrySource 为仿真提供随机性来源。
// 所有随机游走、生成策略和任务完成分布都经由该接口取随机数，
// 测试中注入固定种子即可得到可复现的序列；
// 真实遥测接入时整体替换该实现。
type TelemetrySource interface {
	// Float64 返回 [0,1) 区间的随机数
	Float64() float64
	// Walk 对当前值做一步有界随机游走
	Walk(current, step, min, max float64) float64
	// Between 返回 [min,max) 区间的随机数
	Between(min, max float64) float64
	// IntN 返回 [0,n) 区间的随机整数
	IntN(n int) int
}

type randomTelemetry struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewTelemetrySource 创建随机遥测源，seed为0时使用时间种子
func NewTelemetrySource(seed int64) TelemetrySource {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &randomTelemetry{rng: rand.New(rand.NewSource(seed))}
}

func (t *randomTelemetry) Float64() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.rng.Float64()
}

func (t *randomTelemetry) Walk(current, step, min, max float64) float64 {
	t.mu.Lock()
	next := current + (t.rng.Float64()*2-1)*step
	t.mu.Unlock()

	if next < min {
		next = min
	}
	if next > max {
		next = max
	}
	return next
}

func (t *randomTelemetry) Between(min, max float64) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return min + t.rng.Float64()*(max-min)
}

func (t *randomTelemetry) IntN(n int) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.rng.Intn(n)
}
