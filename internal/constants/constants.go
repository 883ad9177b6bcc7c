package constants

// 订单状态常量
const (
	OrderStatusRequestReceived        = "order-request-received"
	OrderStatusConsultation           = "consultation-in-progress"
	OrderStatusAwaitingAdvancePayment = "awaiting-advance-payment"
	OrderStatusAdvancePaymentReceived = "advance-payment-received"
	OrderStatusDesignInProgress       = "design-in-progress"
	OrderStatusAwaitingDesignApproval = "awaiting-design-approval"
	OrderStatusProductionStarted      = "production-started"
	OrderStatusProductionInProgress   = "production-in-progress"
	OrderStatusReadyForDelivery       = "ready-for-delivery"
	OrderStatusOutForDelivery         = "out-for-delivery"
	OrderStatusCompleted              = "order-completed"
	OrderStatusCanceled               = "order-canceled"
)

// 订单支付状态常量
const (
	OrderPaymentStatusPending = "pending"
	OrderPaymentStatusPartial = "partial"
	OrderPaymentStatusPaid    = "paid"
)

// 订单履约方式
const (
	FulfillmentMethodOnline  = "online"
	FulfillmentMethodOffline = "offline"
)

// 配送方式
const (
	DeliveryMethodShopPickup = "shop-pickup"
	DeliveryMethodCourier    = "courier"
)

// 订单结算意向
const (
	OrderPaymentMethodOnline = "online-payment"
	OrderPaymentMethodCOD    = "cod-payment"
)

// 支付方式
const (
	PaymentMethodCash   = "cash"
	PaymentMethodOnline = "online"
)

// 员工角色与在线状态
const (
	StaffRoleAdmin     = "admin"
	StaffRoleStaff     = "staff"
	StaffStatusOnline  = "online"
	StaffStatusOffline = "offline"
)

// 订单列表状态分组
const (
	OrderBucketActive    = "active"
	OrderBucketRequested = "requested"
	OrderBucketCompleted = "completed"
	OrderBucketCancelled = "cancelled"
)

// 订单搜索字段
const (
	OrderSearchByOrderID       = "order-id"
	OrderSearchByCustomerName  = "customer-name"
	OrderSearchByCustomerPhone = "customer-phone"
	OrderSearchByCustomerEmail = "customer-email"
)

// 通知事件
const (
	EventCreateOrder        = "create-order"
	EventCreateOrderRequest = "create-order-request"
	EventOrderUpdated       = "order-updated"
	EventPaymentSettled     = "payment-settled"
	EventStaffStatusChanged = "staff-status-changed"
)

// 通知驱动
const (
	NotifyDriverNone  = "none"
	NotifyDriverRedis = "redis"
	NotifyDriverKafka = "kafka"
)

// 清理动作
const (
	CleanupActionCartItems      = "cart-items"
	CleanupActionUnpaidPayments = "unpaid-payments"
	CleanupActionExpiredOTPs    = "expired-otps"
	CleanupActionExpiredCoupons = "expired-coupons"
)

// 队列名称
const (
	QueueDefault  = "default"
	QueueCritical = "critical"
)

// 异步任务类型
const (
	TaskNotificationDispatch = "notification:dispatch"
	TaskCleanupSweep         = "cleanup:sweep"
)

// 上传场景
const (
	UploadSceneOrderDesign = "order-designs"
)
