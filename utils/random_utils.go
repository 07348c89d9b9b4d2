package utils

import (
	"fmt"

	"github.com/google/uuid"
)

// NewEntityID 生成带前缀的实体ID，如 task_9f86d081-...
func NewEntityID(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, uuid.NewString())
}
