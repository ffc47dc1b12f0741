package redis_client

import (
	"context"
	"strconv"

	"github.com/redis/go-redis/v9"
	"github.com/transitlive/transitlive/pkg/util"
)

var Client *redis.Client

const defaultConnectionAddress = "localhost:6379"
const defaultDatabase = 0

// Connect establishes the shared client. Redis is optional for the engine -
// without it route geometry just isn't cached.
func Connect() error {
	address := defaultConnectionAddress
	password := ""
	database := defaultDatabase

	env := util.GetEnvironmentVariables()

	if env["TRANSITLIVE_REDIS_ADDRESS"] != "" {
		address = env["TRANSITLIVE_REDIS_ADDRESS"]
	}

	if env["TRANSITLIVE_REDIS_PASSWORD"] != "" {
		password = env["TRANSITLIVE_REDIS_PASSWORD"]
	}

	if env["TRANSITLIVE_REDIS_DATABASE"] != "" {
		if n, err := strconv.Atoi(env["TRANSITLIVE_REDIS_DATABASE"]); err == nil {
			database = n
		} else {
			return err
		}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     address,
		Password: password,
		DB:       database,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return err
	}

	Client = client

	return nil
}
