package service

import (
	"strings"

	"github.com/dujiao-next/orderdesk/internal/constants"
)

var orderStatuses = map[string]struct{}{
	constants.OrderStatusRequestReceived:        {},
	constants.OrderStatusConsultation:           {},
	constants.OrderStatusAwaitingAdvancePayment: {},
	constants.OrderStatusAdvancePaymentReceived: {},
	constants.OrderStatusDesignInProgress:       {},
	constants.OrderStatusAwaitingDesignApproval: {},
	constants.OrderStatusProductionStarted:      {},
	constants.OrderStatusProductionInProgress:   {},
	constants.OrderStatusReadyForDelivery:       {},
	constants.OrderStatusOutForDelivery:         {},
	constants.OrderStatusCompleted:              {},
	constants.OrderStatusCanceled:               {},
}

// activeOrderStatuses 处理中的订单状态（咨询至配送中）
var activeOrderStatuses = []string{
	constants.OrderStatusConsultation,
	constants.OrderStatusAwaitingAdvancePayment,
	constants.OrderStatusAdvancePaymentReceived,
	constants.OrderStatusDesignInProgress,
	constants.OrderStatusAwaitingDesignApproval,
	constants.OrderStatusProductionStarted,
	constants.OrderStatusProductionInProgress,
	constants.OrderStatusReadyForDelivery,
	constants.OrderStatusOutForDelivery,
}

// allowedTransitions 严格模式下的状态流转表，取消由 canTransition 统一处理
var allowedTransitions = map[string]map[string]bool{
	constants.OrderStatusRequestReceived: {
		constants.OrderStatusConsultation: true,
	},
	constants.OrderStatusConsultation: {
		constants.OrderStatusAwaitingAdvancePayment: true,
		constants.OrderStatusAdvancePaymentReceived: true,
		constants.OrderStatusDesignInProgress:       true,
	},
	constants.OrderStatusAwaitingAdvancePayment: {
		constants.OrderStatusAdvancePaymentReceived: true,
	},
	constants.OrderStatusAdvancePaymentReceived: {
		constants.OrderStatusDesignInProgress:  true,
		constants.OrderStatusProductionStarted: true,
	},
	constants.OrderStatusDesignInProgress: {
		constants.OrderStatusAwaitingDesignApproval: true,
	},
	constants.OrderStatusAwaitingDesignApproval: {
		constants.OrderStatusDesignInProgress:  true,
		constants.OrderStatusProductionStarted: true,
	},
	constants.OrderStatusProductionStarted: {
		constants.OrderStatusProductionInProgress: true,
	},
	constants.OrderStatusProductionInProgress: {
		constants.OrderStatusReadyForDelivery: true,
	},
	constants.OrderStatusReadyForDelivery: {
		constants.OrderStatusOutForDelivery: true,
		constants.OrderStatusCompleted:      true,
	},
	constants.OrderStatusOutForDelivery: {
		constants.OrderStatusCompleted: true,
	},
}

// IsValidOrderStatus 判断状态是否属于生命周期闭集
func IsValidOrderStatus(status string) bool {
	_, ok := orderStatuses[strings.TrimSpace(status)]
	return ok
}

func isTerminalOrderStatus(status string) bool {
	return status == constants.OrderStatusCompleted || status == constants.OrderStatusCanceled
}

// canTransition 严格模式流转校验，同状态写入视为合法
func canTransition(current, target string) bool {
	if current == target {
		return true
	}
	if isTerminalOrderStatus(current) {
		return false
	}
	if target == constants.OrderStatusCanceled {
		return true
	}
	nexts, ok := allowedTransitions[current]
	if !ok {
		return false
	}
	return nexts[target]
}

// resolveBucketStatuses 将列表分组转换为状态集合，未知或为空表示不限制
func resolveBucketStatuses(bucket string) []string {
	switch strings.ToLower(strings.TrimSpace(bucket)) {
	case constants.OrderBucketActive:
		return append([]string(nil), activeOrderStatuses...)
	case constants.OrderBucketRequested:
		return []string{constants.OrderStatusRequestReceived}
	case constants.OrderBucketCompleted:
		return []string{constants.OrderStatusCompleted}
	case constants.OrderBucketCancelled, "canceled":
		return []string{constants.OrderStatusCanceled}
	default:
		return nil
	}
}
