package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"storefront/internal/api"
	"storefront/internal/cart"
	"storefront/internal/domain"
	"storefront/internal/logger"
	"storefront/internal/metric"
	"storefront/internal/trace"
)

type Options struct {
	Cart      *cart.Store
	Orders    OrderClient
	Directory DirectoryClient
	Session   Session
	Notifier  Notifier
	Logger    *zap.Logger
	Now       func() time.Time
	// Intn returns a number in [0,n); used for transaction id suffixes
	Intn func(n int) int
}

// Orchestrator checkout wizard of a single session
type Orchestrator struct {
	cart      *cart.Store
	orders    OrderClient
	directory DirectoryClient
	session   Session
	notifier  Notifier
	log       *zap.Logger
	tracer    oteltrace.Tracer
	now       func() time.Time
	intn      func(int) int

	mu          sync.Mutex
	scope       context.Context
	cancelScope context.CancelFunc
	generation  uint64
	closed      bool

	cities        []domain.City
	citiesLoaded  bool
	citiesLoading bool
	citiesErr     error

	addresses        []domain.Address
	addressesLoading bool
	addressesErr     error

	processing   bool
	orderSuccess bool
	lastOrderID  int64
	pending      *PendingOrder

	notifySlots chan struct{}
	inflight    sync.WaitGroup
}

const (
	notifyConcurrency = 4
	notifyTimeout     = 10 * time.Second
)

func New(opts Options) *Orchestrator {
	o := &Orchestrator{
		cart:      opts.Cart,
		orders:    opts.Orders,
		directory: opts.Directory,
		session:   opts.Session,
		notifier:  opts.Notifier,
		log:       logger.OrNop(opts.Logger).Named("checkout"),
		tracer:    otel.Tracer("storefront/checkout"),
		now:       opts.Now,
		intn:      opts.Intn,

		notifySlots: make(chan struct{}, notifyConcurrency),
	}
	if o.cart == nil {
		o.cart = cart.NewStore()
	}
	if o.now == nil {
		o.now = time.Now
	}
	if o.intn == nil {
		o.intn = rand.IntN
	}
	o.scope, o.cancelScope = context.WithCancel(context.Background())
	return o
}

func (o *Orchestrator) Cart() *cart.Store { return o.cart }

// renewScope cancels the loads of the step being left. Caller holds o.mu.
func (o *Orchestrator) renewScope() {
	o.cancelScope()
	o.generation++
	o.citiesLoading = false
	o.addressesLoading = false
	if o.closed {
		return
	}
	o.scope, o.cancelScope = context.WithCancel(context.Background())
}

// Close cancels outstanding loads for good
func (o *Orchestrator) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.closed = true
	o.renewScope()
}

// ready per-step predicate. Caller holds o.mu.
func (o *Orchestrator) ready(st cart.State) bool {
	switch st.Step {
	case cart.StepItems:
		return len(st.Items) > 0
	case cart.StepAddress:
		return addressReady(st.Address) && o.citiesErr == nil
	case cart.StepPayment:
		return paymentReady(st)
	}
	return true
}

func addressReady(a domain.AddressForm) bool {
	return a.AddressLine != "" && a.CityID != ""
}

func paymentReady(st cart.State) bool {
	if st.Method == domain.PaymentCard {
		return st.Payment.Complete()
	}
	return true
}

// submittable the summary step only confirms what the earlier steps gated
func submittable(st cart.State) bool {
	return st.Step == cart.StepSummary && len(st.Items) > 0 && addressReady(st.Address) && paymentReady(st)
}

// CanContinue readiness of the current step
func (o *Orchestrator) CanContinue() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.ready(o.cart.Snapshot())
}

// Next advances one step. It requires a logged-in session and a ready step;
// on refusal nothing changes.
func (o *Orchestrator) Next() (cart.Step, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	st := o.cart.Snapshot()
	target := cart.ClampStep(int(st.Step) + 1)

	if !o.session.IsAuthenticated() {
		metric.CheckoutStepTransitions.WithLabelValues(target.String(), "login_required").Inc()
		return st.Step, ErrLoginRequired
	}
	if !o.ready(st) {
		metric.CheckoutStepTransitions.WithLabelValues(target.String(), "incomplete").Inc()
		return st.Step, ErrStepIncomplete
	}
	o.moveTo(st.Step, target)
	return target, nil
}

// Prev goes back one step, never below the first
func (o *Orchestrator) Prev() cart.Step {
	o.mu.Lock()
	defer o.mu.Unlock()
	st := o.cart.Snapshot()
	target := cart.ClampStep(int(st.Step) - 1)
	o.moveTo(st.Step, target)
	return target
}

// caller holds o.mu
func (o *Orchestrator) moveTo(from, to cart.Step) {
	metric.CheckoutStepTransitions.WithLabelValues(to.String(), "ok").Inc()
	if from == to {
		return
	}
	o.cart.SetStep(to)
	o.renewScope()
}

// scoped derives a request context cancelled by either ctx or the current
// step scope, and the generation it belongs to
func (o *Orchestrator) scoped(ctx context.Context) (context.Context, uint64, func()) {
	o.mu.Lock()
	scope, gen := o.scope, o.generation
	o.mu.Unlock()

	reqCtx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(scope, cancel)
	return reqCtx, gen, func() {
		stop()
		cancel()
	}
}

// LoadCities fetches the city list. The result is applied only while the
// session stays on the step that started the load.
func (o *Orchestrator) LoadCities(ctx context.Context) ([]domain.City, error) {
	reqCtx, gen, done := o.scoped(ctx)
	defer done()

	o.mu.Lock()
	if gen == o.generation {
		o.citiesLoading = true
	}
	o.mu.Unlock()

	env, err := o.directory.ListCities(reqCtx)

	o.mu.Lock()
	defer o.mu.Unlock()
	if gen != o.generation {
		o.log.Debug("dropping stale city list", trace.Field(ctx))
		return nil, ErrStale
	}
	o.citiesLoading = false
	if err != nil {
		o.citiesErr = fmt.Errorf("%w: %w", ErrCitiesUnavailable, err)
		o.log.Warn("city list failed", zap.Error(err), trace.Field(ctx))
		return nil, o.citiesErr
	}
	o.cities, o.citiesErr, o.citiesLoaded = env.Items, nil, true
	return o.cityOptions(), nil
}

// RetryCities explicit retry after a failed city load
func (o *Orchestrator) RetryCities(ctx context.Context) ([]domain.City, error) {
	return o.LoadCities(ctx)
}

// Cities loads the list on first use and returns the selectable options
func (o *Orchestrator) Cities(ctx context.Context) ([]domain.City, error) {
	o.mu.Lock()
	loaded, err := o.citiesLoaded, o.citiesErr
	opts := o.cityOptions()
	o.mu.Unlock()
	if loaded || err != nil {
		return opts, err
	}
	return o.LoadCities(ctx)
}

// cityOptions loaded cities, or the fallback list when none came back.
// Caller holds o.mu.
func (o *Orchestrator) cityOptions() []domain.City {
	src := o.cities
	if len(src) == 0 {
		src = domain.FallbackCities
	}
	return append([]domain.City(nil), src...)
}

// LoadAddresses fetches the saved addresses of a logged-in user; anonymous
// sessions get an empty list without a call
func (o *Orchestrator) LoadAddresses(ctx context.Context) ([]domain.Address, error) {
	if !o.session.IsAuthenticated() {
		o.mu.Lock()
		o.addresses, o.addressesErr = nil, nil
		o.mu.Unlock()
		return []domain.Address{}, nil
	}

	reqCtx, gen, done := o.scoped(ctx)
	defer done()

	o.mu.Lock()
	if gen == o.generation {
		o.addressesLoading = true
	}
	o.mu.Unlock()

	env, err := o.directory.ListAddresses(reqCtx)

	o.mu.Lock()
	defer o.mu.Unlock()
	if gen != o.generation {
		return nil, ErrStale
	}
	o.addressesLoading = false
	if err != nil {
		o.addressesErr = fmt.Errorf("%w: %w", ErrAddressesUnavailable, err)
		o.log.Warn("saved addresses failed", zap.Error(err), trace.Field(ctx))
		return nil, o.addressesErr
	}
	o.addresses, o.addressesErr = env.Items, nil
	return append([]domain.Address{}, o.addresses...), nil
}

// UseSavedAddress copies a loaded saved address into the address form
func (o *Orchestrator) UseSavedAddress(id int64) (cart.State, error) {
	o.mu.Lock()
	var found *domain.Address
	for i := range o.addresses {
		if o.addresses[i].ID == id {
			a := o.addresses[i]
			found = &a
			break
		}
	}
	o.mu.Unlock()
	if found == nil {
		return o.cart.Snapshot(), ErrAddressNotFound
	}
	city := strconv.FormatInt(found.CityID, 10)
	return o.cart.SetAddress(domain.AddressPatch{
		AddressLine: &found.AddressLine,
		CityID:      &city,
		Sector:      &found.Sector,
		Reference:   &found.Reference,
	}), nil
}

// SetPaymentMethod switches the method through the cart reducer
func (o *Orchestrator) SetPaymentMethod(m domain.PaymentMethod) cart.State {
	return o.cart.SetPaymentMethod(m)
}

func (o *Orchestrator) begin() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.processing {
		return ErrCheckoutInProgress
	}
	o.processing = true
	return nil
}

// clearSuccess marks the start of a commit attempt that passed its gates
func (o *Orchestrator) clearSuccess() {
	o.mu.Lock()
	o.orderSuccess = false
	o.mu.Unlock()
}

// cityIDOf accepts the form value the way the API numerics are read: blanks
// trimmed, any integral decimal spelling
func cityIDOf(s string) (int64, bool) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	id, ok := api.NumericOf(d).Int64()
	return id, ok && id > 0
}

func (o *Orchestrator) end() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.processing = false
}

func (o *Orchestrator) transactionID() string {
	return fmt.Sprintf("TX-%d-%d", o.now().UnixMilli(), o.intn(1000))
}

func jsonAmount(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(2))
}

func paymentStatus(m domain.PaymentMethod) domain.PaymentStatus {
	if m == domain.PaymentCard {
		return domain.PaymentStatusApproved
	}
	return domain.PaymentStatusPaid
}

// paymentAmount server total when the API sent one, the local total when it
// did not; a total that is present but unusable is an error
func paymentAmount(total api.Numeric, local decimal.Decimal) (decimal.Decimal, error) {
	if !total.Present {
		return local, nil
	}
	if !total.Valid {
		return decimal.Zero, ErrInvalidAmount
	}
	return total.Value, nil
}

// Submit runs the commit from the summary step: create the order, then record
// its payment. The cart is reset only when both calls succeed. A payment
// failure after the order exists is reported as OutcomePaymentPending with the
// order kept as the pending handle; calling Submit again creates a new order.
func (o *Orchestrator) Submit(ctx context.Context) (*Result, error) {
	if err := o.begin(); err != nil {
		return nil, err
	}
	defer o.end()

	st := o.cart.Snapshot()
	if !submittable(st) {
		o.record(OutcomeSkipped, st.Method)
		return &Result{Outcome: OutcomeSkipped}, ErrStepIncomplete
	}
	if !o.session.IsAuthenticated() {
		o.record(OutcomeSkipped, st.Method)
		return &Result{Outcome: OutcomeSkipped}, ErrLoginRequired
	}
	cityID, ok := cityIDOf(st.Address.CityID)
	if !ok {
		o.record(OutcomeSkipped, st.Method)
		return &Result{Outcome: OutcomeSkipped}, ErrInvalidCity
	}
	o.clearSuccess()

	ctx, span := o.tracer.Start(ctx, "checkout.Submit")
	defer span.End()
	span.SetAttributes(attribute.String("payment.method", string(st.Method)), attribute.Int("cart.lines", len(st.Items)))

	var txID *string
	if st.Method == domain.PaymentCard {
		id := st.Payment.TransactionID
		if id == "" {
			id = o.transactionID()
			st = o.cart.SetPaymentDetails(domain.PaymentPatch{TransactionID: &id})
		}
		txID = &id
	}

	lines := make([]api.OrderLine, 0, len(st.Items))
	for _, l := range st.Items {
		lines = append(lines, api.OrderLine{ProductID: l.Product.ID, Quantity: l.Quantity})
	}
	req := api.CreateOrderRequest{
		Address: &domain.AddressSnapshot{
			AddressLine: st.Address.AddressLine,
			CityID:      cityID,
			Sector:      st.Address.Sector,
			Reference:   st.Address.Reference,
		},
		Items: lines,
	}
	ev := o.event(st.Method, txID, lines)

	// phase 1
	o.log.Info("creating order", zap.Int("lines", len(lines)), zap.String("method", string(st.Method)), trace.Field(ctx))
	receipt, err := o.orders.CreateOrder(ctx, req)
	if err != nil {
		return o.fail(ctx, span, ev, fmt.Errorf("%w: %w", ErrPurchaseFailed, err))
	}
	orderID, ok := receipt.ID.Int64()
	if !ok {
		return o.fail(ctx, span, ev, ErrInvalidOrderID)
	}
	span.AddEvent("order created", oteltrace.WithAttributes(attribute.Int64("order.id", orderID)))

	handle := &PendingOrder{
		OrderID:       orderID,
		Method:        st.Method,
		PaymentStatus: paymentStatus(st.Method),
		TransactionID: txID,
		CreatedAt:     o.now(),
	}
	amount, err := paymentAmount(receipt.Total, st.Total())
	if err != nil {
		return o.paymentPending(ctx, span, ev, handle, err)
	}
	handle.Amount = &amount

	// phase 2
	return o.pay(ctx, span, ev, handle)
}

// ResumePayment retries phase 2 against the pending order handle
func (o *Orchestrator) ResumePayment(ctx context.Context) (*Result, error) {
	if !o.session.IsAuthenticated() {
		return nil, ErrLoginRequired
	}
	o.mu.Lock()
	pending := o.pending
	o.mu.Unlock()
	if pending == nil {
		return nil, ErrNoPendingOrder
	}
	if err := o.begin(); err != nil {
		return nil, err
	}
	defer o.end()
	o.clearSuccess()

	ctx, span := o.tracer.Start(ctx, "checkout.ResumePayment")
	defer span.End()
	span.SetAttributes(attribute.Int64("order.id", pending.OrderID))

	handle := *pending
	ev := o.event(handle.Method, handle.TransactionID, nil)
	if handle.Amount == nil {
		return o.paymentPending(ctx, span, ev, &handle, ErrInvalidAmount)
	}
	return o.pay(ctx, span, ev, &handle)
}

func (o *Orchestrator) pay(ctx context.Context, span oteltrace.Span, ev Event, h *PendingOrder) (*Result, error) {
	ev.OrderID, ev.Amount = h.OrderID, *h.Amount
	payment, err := o.orders.CreatePayment(ctx, h.OrderID, api.CreatePaymentRequest{
		Amount:        jsonAmount(*h.Amount),
		Method:        h.Method,
		Status:        h.PaymentStatus,
		TransactionID: h.TransactionID,
	})
	if err != nil {
		return o.paymentPending(ctx, span, ev, h, err)
	}

	o.mu.Lock()
	o.lastOrderID = h.OrderID
	o.orderSuccess = true
	if o.pending != nil && o.pending.OrderID == h.OrderID {
		o.pending = nil
	}
	o.cart.Reset()
	o.renewScope()
	o.mu.Unlock()

	o.log.Info("order committed", zap.Int64("order_id", h.OrderID), zap.String("amount", h.Amount.StringFixed(2)), trace.Field(ctx))
	o.record(OutcomeCommitted, h.Method)
	ev.Outcome = OutcomeCommitted
	o.notify(ctx, ev)
	return &Result{Outcome: OutcomeCommitted, OrderID: h.OrderID, Payment: payment}, nil
}

func (o *Orchestrator) paymentPending(ctx context.Context, span oteltrace.Span, ev Event, h *PendingOrder, cause error) (*Result, error) {
	err := &PaymentPendingError{OrderID: h.OrderID, Err: cause}
	span.RecordError(err)
	span.SetStatus(codes.Error, "payment pending")

	h.Reason = cause.Error()
	o.mu.Lock()
	if o.pending != nil && o.pending.OrderID != h.OrderID {
		o.log.Warn("replacing pending order", zap.Int64("previous_order_id", o.pending.OrderID), zap.Int64("order_id", h.OrderID))
	}
	kept := *h
	o.pending = &kept
	o.mu.Unlock()

	o.log.Error("payment failed after order creation", zap.Int64("order_id", h.OrderID), zap.Error(cause), trace.Field(ctx))
	o.record(OutcomePaymentPending, h.Method)
	ev.Outcome, ev.OrderID, ev.Reason = OutcomePaymentPending, h.OrderID, h.Reason
	if h.Amount != nil {
		ev.Amount = *h.Amount
	}
	o.notify(ctx, ev)
	return &Result{Outcome: OutcomePaymentPending, OrderID: h.OrderID, Pending: &kept}, err
}

func (o *Orchestrator) fail(ctx context.Context, span oteltrace.Span, ev Event, err error) (*Result, error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, "order failed")
	o.log.Error("order creation failed", zap.Error(err), trace.Field(ctx))
	o.record(OutcomeFailed, ev.Method)
	ev.Outcome, ev.Reason = OutcomeFailed, err.Error()
	o.notify(ctx, ev)
	return &Result{Outcome: OutcomeFailed}, err
}

func (o *Orchestrator) event(m domain.PaymentMethod, txID *string, lines []api.OrderLine) Event {
	ev := Event{Method: m, TransactionID: txID, Items: lines, At: o.now()}
	if u, ok := o.session.User(); ok {
		ev.UserID, ev.Email, ev.Name = u.ID, u.Email, u.Name
	}
	return ev
}

// notify hands the event to the notifier off the commit path. Events beyond
// notifyConcurrency in flight are dropped.
func (o *Orchestrator) notify(ctx context.Context, ev Event) {
	if o.notifier == nil {
		return
	}
	select {
	case o.notifySlots <- struct{}{}:
	default:
		o.log.Warn("notifier busy, dropping event", zap.String("outcome", string(ev.Outcome)), zap.Int64("order_id", ev.OrderID))
		return
	}
	o.inflight.Add(1)
	go func() {
		defer func() {
			<-o.notifySlots
			o.inflight.Done()
		}()
		nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
		defer cancel()
		o.notifier.Notify(nctx, ev)
	}()
}

func (o *Orchestrator) record(outcome Outcome, m domain.PaymentMethod) {
	metric.CheckoutOutcomes.WithLabelValues(string(outcome), string(m)).Inc()
}
