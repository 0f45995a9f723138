package domain

// Transaction — нормализованная запись перевода между двумя адресами.
// Поставляется Data-Source портом, движок её не хранит и не мутирует.
type Transaction struct {
	FromAddress string  `json:"from_address"`
	ToAddress   string  `json:"to_address"`
	Value       float64 `json:"value"` // Неотрицательная сумма перевода (USD)
}
