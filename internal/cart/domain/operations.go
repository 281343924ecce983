package domain

// 购物车变更操作名，用于指标与日志
const (
	OpAddItem     = "add_item"
	OpSetQuantity = "set_quantity"
	OpRemoveItem  = "remove_item"
	OpClear       = "clear"
)
