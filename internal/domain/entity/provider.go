// Package entity 定义领域实体
package entity

import (
	"time"
)

// ProviderKind 服务商能力类型
type ProviderKind string

const (
	ProviderKindText  ProviderKind = "text"
	ProviderKindImage ProviderKind = "image"
	ProviderKindVideo ProviderKind = "video"
)

// Provider 模型服务商配置，Endpoint 为 OpenAI 兼容接口地址
type Provider struct {
	ID        string       `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string       `json:"name" gorm:"type:varchar(255);not null"`
	Kind      ProviderKind `json:"kind" gorm:"type:varchar(16);not null;index"`
	Endpoint  string       `json:"endpoint" gorm:"type:text;not null"`
	Credential string      `json:"-" gorm:"type:text"`
	Model     string       `json:"model" gorm:"type:varchar(255);not null"`
	IsDefault bool         `json:"is_default" gorm:"default:false"`
	CreatedAt time.Time    `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time    `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName 指定表名
func (Provider) TableName() string {
	return "providers"
}
