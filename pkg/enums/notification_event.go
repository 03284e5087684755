package enums

// NotificationEvent names the realtime events pushed to user channels.
type NotificationEvent string

const (
	EventNewOrderForOperator          NotificationEvent = "new_order_for_operator"
	EventOrderStatusUpdateForCustomer NotificationEvent = "order_status_update_for_customer"
	EventCustomerCancellationRequest  NotificationEvent = "customer_cancellation_request"
)

// String implements fmt.Stringer.
func (n NotificationEvent) String() string {
	return string(n)
}
