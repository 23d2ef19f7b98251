// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"strings"
	"time"

	"storyboard-ai-api/internal/domain/entity"
)

// CreateProviderRequest 创建服务商请求
type CreateProviderRequest struct {
	Name       string `json:"name" binding:"required,max=255"`
	Kind       string `json:"kind" binding:"required,oneof=text image video"`
	Endpoint   string `json:"endpoint" binding:"required"`
	Credential string `json:"credential"`
	Model      string `json:"model" binding:"required,max=255"`
}

// UpdateProviderRequest 更新服务商请求，凭证省略时保持不变
type UpdateProviderRequest struct {
	Name       string `json:"name" binding:"required,max=255"`
	Kind       string `json:"kind" binding:"required,oneof=text image video"`
	Endpoint   string `json:"endpoint" binding:"required"`
	Credential string `json:"credential"`
	Model      string `json:"model" binding:"required,max=255"`
}

// ProviderResponse 服务商响应，凭证仅回显掩码
type ProviderResponse struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Kind             string    `json:"kind"`
	Endpoint         string    `json:"endpoint"`
	CredentialMasked string    `json:"credential_masked,omitempty"`
	Model            string    `json:"model"`
	IsDefault        bool      `json:"is_default"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// ProviderListResponse 服务商列表响应
type ProviderListResponse struct {
	Providers []*ProviderResponse `json:"providers"`
}

// ToProviderEntity 请求转实体
func (r *CreateProviderRequest) ToProviderEntity() *entity.Provider {
	return &entity.Provider{
		Name:       r.Name,
		Kind:       entity.ProviderKind(r.Kind),
		Endpoint:   r.Endpoint,
		Credential: r.Credential,
		Model:      r.Model,
	}
}

// ToProviderResponse 实体转响应
func ToProviderResponse(p *entity.Provider) *ProviderResponse {
	return &ProviderResponse{
		ID:               p.ID,
		Name:             p.Name,
		Kind:             string(p.Kind),
		Endpoint:         p.Endpoint,
		CredentialMasked: maskCredential(p.Credential),
		Model:            p.Model,
		IsDefault:        p.IsDefault,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

// ToProviderListResponse 实体列表转响应
func ToProviderListResponse(providers []*entity.Provider) ProviderListResponse {
	out := make([]*ProviderResponse, 0, len(providers))
	for _, p := range providers {
		out = append(out, ToProviderResponse(p))
	}
	return ProviderListResponse{Providers: out}
}

// maskCredential 凭证掩码，只保留首尾各 4 位
func maskCredential(credential string) string {
	if credential == "" {
		return ""
	}
	if len(credential) <= 8 {
		return strings.Repeat("*", len(credential))
	}
	return credential[:4] + strings.Repeat("*", 6) + credential[len(credential)-4:]
}
