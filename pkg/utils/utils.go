// Package utils 提供雪花 ID 与分页等通用工具
package utils

import (
	"fmt"

	"github.com/bwmarrin/snowflake"
)

// IDGenerator 雪花算法 ID 生成器
type IDGenerator struct {
	node *snowflake.Node
}

// NewIDGenerator 创建 ID 生成器，nodeID 取值 0-1023
func NewIDGenerator(nodeID int64) (*IDGenerator, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("create snowflake node %d: %w", nodeID, err)
	}
	return &IDGenerator{node: node}, nil
}

// Generate 生成 int64 ID
func (g *IDGenerator) Generate() int64 {
	return g.node.Generate().Int64()
}

// NextWithPrefix 生成带业务前缀的字符串编号，例如 ORD-1789...
func (g *IDGenerator) NextWithPrefix(prefix string) string {
	return prefix + "-" + g.node.Generate().String()
}

// Pagination 分页信息
type Pagination struct {
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Total    int64 `json:"total"`
	Pages    int64 `json:"pages"`
}

// NewPagination 创建分页信息，page 从 1 开始，page_size 限制在 1-100
func NewPagination(page, pageSize int) *Pagination {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return &Pagination{Page: page, PageSize: pageSize}
}

// SetTotal 设置总数并计算页数
func (p *Pagination) SetTotal(total int64) {
	p.Total = total
	p.Pages = (total + int64(p.PageSize) - 1) / int64(p.PageSize)
}

// Offset 查询偏移量
func (p *Pagination) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// Limit 查询条数
func (p *Pagination) Limit() int {
	return p.PageSize
}
