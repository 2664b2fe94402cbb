package health

import (
	"context"

	"claridx/internal/dbmongo"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func DatabaseProbe(db *gorm.DB) Probe {
	return Probe{Name: "db", Check: func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}}
}

func MongoProbe(mc *dbmongo.MongoClient) Probe {
	return Probe{Name: "mongo", Check: mc.Ping}
}

func RedisProbe(client *redis.Client) Probe {
	return Probe{Name: "redis", Check: func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}}
}
