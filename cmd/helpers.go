package cmd

import (
	"fmt"
	"log"
	"strconv"

	"nifri2/emotipet/anim"
	"nifri2/emotipet/motion"
	"nifri2/emotipet/storage"
)

// ParseChannels reads a touch channel count set through -ldflags.
func ParseChannels(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > 32 {
		return def
	}
	return n
}

// ParseHour reads an hour of day set through -ldflags.
func ParseHour(s string, def int) int {
	h, err := strconv.Atoi(s)
	if err != nil || h < 0 || h > 23 {
		return def
	}
	return h
}

// BoardMotion scales the IMU's micro-g and micro-degree readings
// (ReadAcceleration and ReadRotation).
func BoardMotion() motion.Config {
	cfg := motion.DefaultConfig()
	cfg.AccelPerG = 1e6
	cfg.GyroPerDPS = 1e6
	return cfg
}

func ParseStore(s string) StoreKind {
	switch s {
	case "memory":
		return StoreMemory
	default:
		return StoreFlash
	}
}

// LoadAssets mounts the animation store and preloads every clip listed in
// the manifest. Only the mount can fail; a bad manifest leaves clips to be
// loaded on demand.
func LoadAssets(b Board, manifest string, logger *log.Logger) (storage.FS, *anim.Catalog, error) {
	if b.Assets == nil {
		return nil, nil, fmt.Errorf("mount: no asset filesystem")
	}
	fsys, err := storage.Mount(b.Assets, manifest)
	if err != nil {
		return nil, nil, err
	}
	catalog := anim.NewCatalog(fsys)

	f, err := fsys.Open(manifest)
	if err != nil {
		return nil, nil, fmt.Errorf("mount: %w", err)
	}
	defer f.Close()

	entries, err := anim.ReadManifest(f)
	if err != nil {
		logger.Printf("[pet] manifest: %v", err)
		return fsys, catalog, nil
	}
	catalog.Preload(entries, logger)
	logger.Printf("[pet] %d clips listed, %d unavailable", len(entries), len(catalog.Failed()))
	return fsys, catalog, nil
}
