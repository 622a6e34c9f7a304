package loader_test

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/jonwraymond/imageloader/display"
	"github.com/jonwraymond/imageloader/loader"
	"github.com/jonwraymond/imageloader/request"
)

func ExampleNew() {
	dir, _ := os.MkdirTemp("", "imagecache")
	defer os.RemoveAll(dir)

	ld, err := loader.New(loader.Config{CacheDir: dir})
	if err != nil {
		fmt.Println("construction failed:", err)
		return
	}
	defer ld.Close()

	fmt.Println("loader ready")
	// Output:
	// loader ready
}

func ExampleLoader_Load() {
	dir, _ := os.MkdirTemp("", "imagecache")
	defer os.RemoveAll(dir)

	presenter := display.PresenterFunc(func(d display.Delivery) {
		fmt.Println("state:", d.State)
		fmt.Println("cache-only miss:", errors.Is(d.Err, loader.ErrCacheOnlyMiss))
	})
	ld, _ := loader.New(loader.Config{CacheDir: dir}, loader.WithPresenter(presenter))

	// A cache-only request against an empty cache fails without
	// touching the network.
	desc := request.Descriptor{
		URL:          "https://img.example.com/avatar.png",
		UseCacheOnly: true,
	}
	if err := ld.Load(context.Background(), desc, nil); err != nil {
		fmt.Println("submit failed:", err)
	}

	// Close waits for in-flight loads, so the delivery has been
	// presented by the time it returns.
	ld.Close()
	// Output:
	// state: failed
	// cache-only miss: true
}

type printingListener struct{}

func (printingListener) OnDelivery(d display.Delivery) {
	fmt.Println("observed:", d.State)
}

func ExampleLoader_RegisterListener() {
	dir, _ := os.MkdirTemp("", "imagecache")
	defer os.RemoveAll(dir)

	ld, _ := loader.New(loader.Config{CacheDir: dir})
	ld.RegisterListener(printingListener{})

	desc := request.Descriptor{
		URL:          "https://img.example.com/avatar.png",
		UseCacheOnly: true,
	}
	_ = ld.Load(context.Background(), desc, nil)
	ld.Close()
	// Output:
	// observed: failed
}

func ExampleConfigFromEnv() {
	os.Setenv("IMAGELOADER_MEMORY_STRATEGY", "pressure")
	defer os.Unsetenv("IMAGELOADER_MEMORY_STRATEGY")

	cfg, err := loader.ConfigFromEnv()
	if err != nil {
		fmt.Println("parse failed:", err)
		return
	}

	fmt.Println("strategy:", cfg.MemoryStrategy)
	fmt.Println("fetch concurrency:", cfg.FetchConcurrency)
	// Output:
	// strategy: pressure
	// fetch concurrency: 8
}

func ExampleLoader_HealthCheckers() {
	dir, _ := os.MkdirTemp("", "imagecache")
	defer os.RemoveAll(dir)

	ld, _ := loader.New(loader.Config{CacheDir: dir})
	defer ld.Close()

	for _, c := range ld.HealthCheckers() {
		fmt.Println(c.Name())
	}
	// Output:
	// memory-store
	// disk-store
}

func ExampleLoader_CleanExpired() {
	dir, _ := os.MkdirTemp("", "imagecache")
	defer os.RemoveAll(dir)

	ld, _ := loader.New(loader.Config{CacheDir: dir})
	defer ld.Close()

	res, err := ld.CleanExpired(context.Background())
	if err != nil {
		fmt.Println("sweep failed:", err)
		return
	}
	fmt.Println("deleted:", res.Deleted)
	// Output:
	// deleted: 0
}
