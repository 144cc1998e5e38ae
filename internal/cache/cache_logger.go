package cache

import (
	"context"
	"fmt"
	"log/slog"
)

// SafeInvalidatePattern safely invalidates cache pattern with logging
func SafeInvalidatePattern(ctx context.Context, helper *CacheHelper, pattern string) {
	if err := helper.InvalidatePattern(ctx, pattern); err != nil {
		slog.ErrorContext(ctx, "Failed to invalidate cache pattern",
			"error", err,
			"pattern", pattern)
	}
}

// SafeDelete safely deletes cache keys with logging
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

// InvalidateUserCache drops the identity and phone-existence entries for one user
func InvalidateUserCache(ctx context.Context, cm *CacheManager, userID uint, phone string) {
	SafeDelete(ctx, cm.User, fmt.Sprintf("id:%d", userID))
	SafeInvalidatePattern(ctx, cm.Exists, fmt.Sprintf("phone:%s:*", phone))
	SafeInvalidatePattern(ctx, cm.User, fmt.Sprintf("profile:%d*", userID))
}

// InvalidateSchoolCache drops school reference data plus dependent schedule
// and blocking entries
func InvalidateSchoolCache(ctx context.Context, cm *CacheManager, schoolID uint) {
	SafeDelete(ctx, cm.School, fmt.Sprintf("id:%d", schoolID))
	SafeInvalidatePattern(ctx, cm.School, "list:*")
	SafeInvalidatePattern(ctx, cm.Schedule, fmt.Sprintf("school:%d:*", schoolID))
	SafeInvalidatePattern(ctx, cm.Blocking, fmt.Sprintf("school:%d:*", schoolID))
}

// InvalidateBlockingCache drops computed decisions for one student
func InvalidateBlockingCache(ctx context.Context, cm *CacheManager, studentID uint) {
	SafeInvalidatePattern(ctx, cm.Blocking, fmt.Sprintf("student:%d:*", studentID))
}
