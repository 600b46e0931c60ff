package util

// Batch 将切片按固定大小切分为多批，最后一批可能不足 size。
// size 不大于 0 时整体作为一批。
func Batch[T any](items []T, size int) [][]T {
	if len(items) == 0 {
		return nil
	}
	if size <= 0 || size >= len(items) {
		return [][]T{items}
	}
	batches := make([][]T, 0, (len(items)+size-1)/size)
	for len(items) > size {
		batches = append(batches, items[:size:size])
		items = items[size:]
	}
	return append(batches, items)
}
