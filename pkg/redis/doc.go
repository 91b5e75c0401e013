// Package redis provides helpers for connecting to a Redis server.
//
// Connect retries the connection using the supplied configuration, whose
// fields populate from environment variables via github.com/caarlos0/env.
// Healthcheck returns a probe function for liveness and readiness checks.
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//	    // handle error, probably terminate the application
//	}
//	defer client.Close()
//
// Sentinel errors (e.g. ErrRedisNotReady) wrap the underlying go-redis
// errors using errors.Join for easy comparison and unwrapping.
package redis
