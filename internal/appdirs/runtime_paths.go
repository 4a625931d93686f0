package appdirs

import (
	"path/filepath"
	"strings"
)

const (
	PlanRootName = "plans"
	dbFileName   = "storyboard.db"
)

func PlanRootFor(paths Paths) string {
	return filepath.Join(normalizeOutputDir(paths.OutputDir), PlanRootName)
}

func PlanDirFor(paths Paths, taskID string) string {
	return filepath.Join(PlanRootFor(paths), taskID)
}

func DBPathFor(paths Paths) string {
	return filepath.Join(normalizeCacheDir(paths.CacheDir), dbFileName)
}

func ResolvePlanRoot() (string, error) {
	paths, err := Resolve()
	if err != nil {
		return "", err
	}
	return PlanRootFor(paths), nil
}

func ResolvePlanDir(taskID string) (string, error) {
	paths, err := Resolve()
	if err != nil {
		return "", err
	}
	return PlanDirFor(paths, taskID), nil
}

func ResolveDBPath() (string, error) {
	paths, err := Resolve()
	if err != nil {
		return "", err
	}
	return DBPathFor(paths), nil
}

func normalizeOutputDir(outputDir string) string {
	cleaned := strings.TrimSpace(outputDir)
	if cleaned == "" {
		return "."
	}
	return filepath.Clean(cleaned)
}

func normalizeCacheDir(cacheDir string) string {
	cleaned := strings.TrimSpace(cacheDir)
	if cleaned == "" {
		return "cache"
	}
	return filepath.Clean(cleaned)
}
