package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dujiao-next/orderdesk/internal/constants"
	"github.com/dujiao-next/orderdesk/internal/models"
	"github.com/dujiao-next/orderdesk/internal/payment/sslcommerz"
	"github.com/dujiao-next/orderdesk/internal/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// HandleGatewaySuccess 处理网关成功回调：记录流水、标记到账并重算订单支付状态
// 相同 val_id 的重放不会追加第二条流水
func (s *PaymentService) HandleGatewaySuccess(ctx context.Context, callback sslcommerz.Callback) (*models.Payment, error) {
	log := paymentLogger(
		"transaction_id", callback.TranID,
		"val_id", callback.ValID,
		"callback_amount", callback.Amount,
		"callback_status", callback.Status,
	)
	log.Infow("payment_callback_received", "kind", "success")

	payment, err := s.lookupCallbackPayment(callback, log)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(callback.ValID) == "" {
		log.Warnw("payment_callback_val_id_missing")
		return nil, ErrPaymentCallbackInvalid
	}

	existing, err := s.recordRepo.GetByValID(callback.ValID)
	if err != nil {
		log.Errorw("payment_callback_record_fetch_failed", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrPaymentUpdateFailed, err)
	}
	if existing != nil {
		if existing.TransactionID != payment.TransactionID {
			log.Warnw("payment_callback_val_id_reused", "recorded_transaction_id", existing.TransactionID)
			return nil, ErrPaymentCallbackInvalid
		}
		if payment.IsPaid {
			// 重放仍需重算，修复上次回调未写入的订单状态
			log.Infow("payment_callback_idempotent_success")
			if _, err := s.recalculate(ctx, payment, log); err != nil {
				return nil, err
			}
			return payment, nil
		}
	}

	record, err := s.buildTransactionRecord(ctx, payment, callback, log)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		if existing == nil {
			if err := s.recordRepo.WithTx(tx).Create(record); err != nil {
				return err
			}
		}
		return s.paymentRepo.WithTx(tx).UpdatePaid(payment.ID, true, &now)
	})
	if err != nil {
		if repository.IsDuplicateKey(err) {
			// 并发重放已由另一请求写入
			log.Infow("payment_callback_concurrent_replay")
			return s.GetPaymentByTransactionID(ctx, payment.TransactionID)
		}
		log.Errorw("payment_callback_apply_failed", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrPaymentUpdateFailed, err)
	}
	payment.IsPaid = true
	payment.PaidAt = &now
	log.Infow("payment_callback_settled", "order_id", payment.OrderID, "validated", record.Validated)

	if err := s.settle(ctx, payment, log); err != nil {
		return nil, err
	}
	return payment, nil
}

// HandleGatewayFail 处理网关失败回调
func (s *PaymentService) HandleGatewayFail(ctx context.Context, callback sslcommerz.Callback) (*models.Payment, error) {
	return s.handleGatewayFailure(ctx, callback, "fail")
}

// HandleGatewayCancel 处理用户取消回调
func (s *PaymentService) HandleGatewayCancel(ctx context.Context, callback sslcommerz.Callback) (*models.Payment, error) {
	return s.handleGatewayFailure(ctx, callback, "cancel")
}

// handleGatewayFailure 将支付置为未到账，已是未到账时不做任何写入
func (s *PaymentService) handleGatewayFailure(ctx context.Context, callback sslcommerz.Callback, kind string) (*models.Payment, error) {
	log := paymentLogger("transaction_id", callback.TranID, "callback_status", callback.Status)
	log.Infow("payment_callback_received", "kind", kind)

	payment, err := s.lookupCallbackPayment(callback, log)
	if err != nil {
		return nil, err
	}
	if payment.PaymentMethod != constants.PaymentMethodOnline {
		log.Warnw("payment_callback_method_mismatch", "kind", kind, "method", payment.PaymentMethod)
		return nil, ErrPaymentCallbackInvalid
	}
	if !payment.IsPaid {
		log.Infow("payment_callback_idempotent_unsettled", "kind", kind)
		return payment, nil
	}
	if err := s.paymentRepo.UpdatePaid(payment.ID, false, nil); err != nil {
		log.Errorw("payment_callback_unsettle_failed", "kind", kind, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrPaymentUpdateFailed, err)
	}
	payment.IsPaid = false
	payment.PaidAt = nil
	log.Warnw("payment_callback_unsettled", "kind", kind, "order_id", payment.OrderID)

	if _, err := s.recalculate(ctx, payment, log); err != nil {
		return nil, err
	}
	return payment, nil
}

func (s *PaymentService) lookupCallbackPayment(callback sslcommerz.Callback, log *zap.SugaredLogger) (*models.Payment, error) {
	transactionID := strings.TrimSpace(callback.TranID)
	if transactionID == "" {
		log.Warnw("payment_callback_tran_id_missing")
		return nil, ErrPaymentCallbackInvalid
	}
	payment, err := s.paymentRepo.GetByTransactionID(transactionID)
	if err != nil {
		log.Errorw("payment_callback_payment_fetch_failed", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrPaymentUpdateFailed, err)
	}
	if payment == nil {
		log.Warnw("payment_callback_payment_not_found")
		return nil, ErrPaymentNotFound
	}
	return payment, nil
}

// buildTransactionRecord 组装流水，开启校验时以网关校验接口的结果为准
func (s *PaymentService) buildTransactionRecord(ctx context.Context, payment *models.Payment, callback sslcommerz.Callback, log *zap.SugaredLogger) (*models.TransactionRecord, error) {
	record := &models.TransactionRecord{
		TransactionID:     payment.TransactionID,
		ValID:             strings.TrimSpace(callback.ValID),
		Amount:            parseCallbackMoney(callback.Amount),
		StoreAmount:       parseCallbackMoney(callback.StoreAmount),
		CardType:          callback.CardType,
		CardIssuer:        callback.CardIssuer,
		CardBrand:         callback.CardBrand,
		BankTransactionID: callback.BankTranID,
		Status:            callback.Status,
		TransactionDate:   callback.TranDate,
		Currency:          callback.Currency,
		RawPayload:        models.JSON(callback.ToMap()),
	}
	if !s.options.ValidateCallbacks {
		return record, nil
	}
	if s.gateway == nil {
		return nil, ErrPaymentGatewayRequestFailed
	}

	gatewayCtx, cancel := context.WithTimeout(ctx, s.options.GatewayTimeout)
	defer cancel()
	result, err := s.gateway.ValidateTransaction(gatewayCtx, record.ValID)
	if err != nil {
		log.Warnw("payment_callback_validation_failed", "error", err)
		return nil, mapGatewayError(err)
	}
	validatedAmount := parseCallbackMoney(result.Amount)
	if result.TranID != payment.TransactionID || !validatedAmount.Equal(payment.Amount) {
		log.Warnw("payment_callback_validation_mismatch",
			"validated_transaction_id", result.TranID,
			"validated_amount", validatedAmount.String(),
			"stored_amount", payment.Amount.String(),
		)
		return nil, ErrPaymentCallbackInvalid
	}
	record.Amount = validatedAmount
	record.StoreAmount = parseCallbackMoney(result.StoreAmount)
	record.Status = result.Status
	record.CardType = firstNonEmpty(result.CardType, record.CardType)
	record.CardIssuer = firstNonEmpty(result.CardIssuer, record.CardIssuer)
	record.CardBrand = firstNonEmpty(result.CardBrand, record.CardBrand)
	record.BankTransactionID = firstNonEmpty(result.BankTransactionID, record.BankTransactionID)
	record.TransactionDate = firstNonEmpty(result.TranDate, record.TransactionDate)
	record.Currency = firstNonEmpty(result.Currency, record.Currency)
	record.Validated = true
	return record, nil
}

func parseCallbackMoney(raw string) models.Money {
	money, err := models.NewMoneyFromString(strings.TrimSpace(raw))
	if err != nil {
		return models.Money{}
	}
	return money
}
