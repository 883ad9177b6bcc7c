package models

import "time"

// TransactionRecord 网关成功回调流水，只追加不修改
type TransactionRecord struct {
	ID                uint      `gorm:"primarykey" json:"id"`
	TransactionID     string    `gorm:"type:varchar(64);index;not null" json:"transaction_id"` // 关联支付交易号
	ValID             string    `gorm:"type:varchar(128);uniqueIndex;not null" json:"val_id"`  // 网关校验ID
	Amount            Money     `gorm:"type:decimal(20,2);not null;default:0" json:"amount"`
	StoreAmount       Money     `gorm:"type:decimal(20,2);not null;default:0" json:"store_amount"` // 结算金额
	CardType          string    `gorm:"type:varchar(64)" json:"card_type"`
	CardIssuer        string    `gorm:"type:varchar(128)" json:"card_issuer"`
	CardBrand         string    `gorm:"type:varchar(64)" json:"card_brand"`
	BankTransactionID string    `gorm:"type:varchar(128)" json:"bank_transaction_id"`
	Status            string    `gorm:"type:varchar(32)" json:"status"`
	TransactionDate   string    `gorm:"type:varchar(64)" json:"transaction_date"` // 网关上报时间（原样保存）
	Currency          string    `gorm:"type:varchar(8)" json:"currency"`
	Validated         bool      `gorm:"not null;default:false" json:"validated"` // 是否经网关校验接口确认
	RawPayload        JSON      `gorm:"type:json" json:"-"`
	CreatedAt         time.Time `gorm:"index" json:"created_at"`
}

// TableName 指定表名
func (TransactionRecord) TableName() string {
	return "transaction_records"
}
