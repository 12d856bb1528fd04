// schema.go

package db

import (
	"fmt"
	"log"
)

// 统一的数据库表结构定义

// CreateAllTablesSQL 创建所有表的SQL语句
const CreateAllTablesSQL = `
-- 玩家表
CREATE TABLE IF NOT EXISTS players (
    id SERIAL PRIMARY KEY,
    username VARCHAR(50) UNIQUE NOT NULL,
    password VARCHAR(100) NOT NULL,
    email VARCHAR(100) UNIQUE NOT NULL,
    created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,

    -- 战绩统计
    total_kills INT DEFAULT 0,
    total_deaths INT DEFAULT 0,
    total_assists INT DEFAULT 0,
    total_matches INT DEFAULT 0,
    total_wins INT DEFAULT 0
);

-- 对局记录表
CREATE TABLE IF NOT EXISTS match_records (
    id VARCHAR(36) PRIMARY KEY,
    game_mode VARCHAR(30) NOT NULL,
    start_time TIMESTAMP WITH TIME ZONE NOT NULL,
    end_time TIMESTAMP WITH TIME ZONE NOT NULL,
    rounds INT NOT NULL,
    winner_id BIGINT DEFAULT 0,
    winning_team INT DEFAULT 0,
    duration INT NOT NULL
);

-- 玩家对局记录表
CREATE TABLE IF NOT EXISTS player_match_records (
    match_id VARCHAR(36) REFERENCES match_records(id) ON DELETE CASCADE,
    player_id BIGINT REFERENCES players(id) ON DELETE CASCADE,
    class VARCHAR(20) NOT NULL,
    team INT DEFAULT 0,
    place INT NOT NULL,
    score INT DEFAULT 0,
    kills INT DEFAULT 0,
    deaths INT DEFAULT 0,
    assists INT DEFAULT 0,
    damage_dealt DECIMAL(10,2) DEFAULT 0,
    damage_taken DECIMAL(10,2) DEFAULT 0,
    PRIMARY KEY (match_id, player_id)
);

-- 索引
CREATE INDEX IF NOT EXISTS idx_match_records_mode ON match_records(game_mode);
CREATE INDEX IF NOT EXISTS idx_player_match_records_player ON player_match_records(player_id);
`

// InitSchema 创建所有表结构
func InitSchema() error {
	if DB == nil {
		return fmt.Errorf("数据库尚未初始化")
	}

	if _, err := DB.Exec(CreateAllTablesSQL); err != nil {
		return fmt.Errorf("创建表结构失败: %w", err)
	}

	log.Println("数据库表结构已就绪")
	return nil
}
