package main

import (
	"ai-course-concepts/config"
	"context"
	"fmt"
	"time"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
)

// Dependency probe: waits for Milvus to come up. Useful in compose setups
// where Milvus takes tens of seconds to boot.
func connectMilvusWithRetry(address string, attempts int, perAttemptTimeout time.Duration, delay time.Duration) (client.Client, error) {
	var lastErr error
	for i := 0; i < attempts; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), perAttemptTimeout)
		cli, err := client.NewClient(ctx, client.Config{Address: address})
		cancel()
		if err == nil {
			return cli, nil
		}
		lastErr = err
		time.Sleep(delay)
	}
	return nil, lastErr
}

func main() {
	if err := config.Init("config.yaml"); err != nil {
		fmt.Println("config error:", err)
		return
	}
	fmt.Println("Database Host: ", config.Cfg.Database.Host)

	cli, err := connectMilvusWithRetry(config.Cfg.Milvus.Address, 20, 5*time.Second, 2*time.Second)
	if err != nil {
		fmt.Println("Milvus connect error:", err)
		return
	}
	defer cli.Close()

	fmt.Println("Milvus connected!")
}
