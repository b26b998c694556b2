package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"storefront/internal/api"
	"storefront/internal/cart"
	"storefront/internal/checkout/mocks"
	"storefront/internal/domain"
)

type stubSession struct {
	authenticated bool
	user          domain.User
}

func (s *stubSession) IsAuthenticated() bool { return s.authenticated }

func (s *stubSession) User() (domain.User, bool) { return s.user, s.authenticated }

type recordingNotifier struct {
	mu     sync.Mutex
	events []Event
}

func (n *recordingNotifier) Notify(_ context.Context, e Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
}

func (n *recordingNotifier) last() Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.events[len(n.events)-1]
}

type fixture struct {
	orders    *mocks.OrderClient
	directory *mocks.DirectoryClient
	session   *stubSession
	notifier  *recordingNotifier
	o         *Orchestrator
}

var fixedNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func setup(t *testing.T) *fixture {
	f := &fixture{
		orders:    mocks.NewOrderClient(t),
		directory: mocks.NewDirectoryClient(t),
		session:   &stubSession{authenticated: true, user: domain.User{ID: 7, Name: "Ana", Email: "ana@example.com"}},
		notifier:  &recordingNotifier{},
	}
	f.o = New(Options{
		Orders:    f.orders,
		Directory: f.directory,
		Session:   f.session,
		Notifier:  f.notifier,
		Now:       func() time.Time { return fixedNow },
		Intn:      func(int) int { return 42 },
	})
	t.Cleanup(func() {
		f.o.Close()
		f.o.inflight.Wait()
	})
	return f
}

func pizza() domain.Product {
	return domain.Product{ID: 1, Name: "Margarita", Price: decimal.RequireFromString("10.00")}
}

// readyForSummary fills every step and parks the wizard on the summary
func (f *fixture) readyForSummary(method domain.PaymentMethod) {
	c := f.o.Cart()
	c.UpdateQuantity(c.AddItem(pizza()).Items[0].Product.ID, 2)
	line, city := "Calle 1", "2"
	c.SetAddress(domain.AddressPatch{AddressLine: &line, CityID: &city})
	c.SetPaymentMethod(method)
	if method == domain.PaymentCard {
		holder, number, exp, cvv := "Ana", "4111111111111111", "12/30", "123"
		c.SetPaymentDetails(domain.PaymentPatch{CardHolder: &holder, CardNumber: &number, Expiry: &exp, CVV: &cvv})
	}
	c.SetStep(cart.StepSummary)
}

func receipt(id, total string) *api.OrderReceipt {
	r := &api.OrderReceipt{}
	if id != "" {
		r.ID = api.Numeric{Present: true, Valid: true, Value: decimal.RequireFromString(id)}
	}
	if total != "" {
		r.Total = api.Numeric{Present: true, Valid: true, Value: decimal.RequireFromString(total)}
	}
	return r
}

func TestNext_RequiresLogin(t *testing.T) {
	f := setup(t)
	f.session.authenticated = false
	f.o.Cart().AddItem(pizza())

	step, err := f.o.Next()

	assert.ErrorIs(t, err, ErrLoginRequired)
	assert.Equal(t, cart.StepItems, step)
	assert.Equal(t, cart.StepItems, f.o.Cart().Snapshot().Step)
}

func TestNext_StepGates(t *testing.T) {
	f := setup(t)

	_, err := f.o.Next()
	assert.ErrorIs(t, err, ErrStepIncomplete, "empty cart must not leave step 0")

	f.o.Cart().AddItem(pizza())
	step, err := f.o.Next()
	require.NoError(t, err)
	assert.Equal(t, cart.StepAddress, step)

	_, err = f.o.Next()
	assert.ErrorIs(t, err, ErrStepIncomplete, "address line and city are required")

	line, city := "Calle 1", "1"
	f.o.Cart().SetAddress(domain.AddressPatch{AddressLine: &line, CityID: &city})
	step, err = f.o.Next()
	require.NoError(t, err)
	assert.Equal(t, cart.StepPayment, step)

	_, err = f.o.Next()
	assert.ErrorIs(t, err, ErrStepIncomplete, "card needs every card field")

	f.o.SetPaymentMethod(domain.PaymentCash)
	step, err = f.o.Next()
	require.NoError(t, err)
	assert.Equal(t, cart.StepSummary, step)

	assert.True(t, f.o.CanContinue())
	step, err = f.o.Next()
	require.NoError(t, err)
	assert.Equal(t, cart.StepSummary, step, "last step is clamped")
}

func TestNext_CityErrorBlocksAddressStep(t *testing.T) {
	f := setup(t)
	f.directory.On("ListCities", mock.Anything).Return(api.Envelope[domain.City]{}, errors.New("boom")).Once()
	f.o.Cart().AddItem(pizza())
	line, city := "Calle 1", "1"
	f.o.Cart().SetAddress(domain.AddressPatch{AddressLine: &line, CityID: &city})
	f.o.Cart().SetStep(cart.StepAddress)

	_, err := f.o.LoadCities(context.Background())
	assert.ErrorIs(t, err, ErrCitiesUnavailable)
	assert.False(t, f.o.CanContinue())

	f.directory.On("ListCities", mock.Anything).Return(api.Envelope[domain.City]{Items: []domain.City{{ID: 1, Name: "Santo Domingo"}}}, nil).Once()
	cities, err := f.o.RetryCities(context.Background())
	require.NoError(t, err)
	assert.Len(t, cities, 1)
	assert.True(t, f.o.CanContinue())
}

func TestPrev_ClampsAtFirstStep(t *testing.T) {
	f := setup(t)
	assert.Equal(t, cart.StepItems, f.o.Prev())
	f.o.Cart().SetStep(cart.StepPayment)
	assert.Equal(t, cart.StepAddress, f.o.Prev())
}

func TestCityOptions_FallbackWhenEmpty(t *testing.T) {
	f := setup(t)
	f.directory.On("ListCities", mock.Anything).Return(api.Envelope[domain.City]{Items: []domain.City{}, Shape: api.ShapeEmpty}, nil)

	cities, err := f.o.Cities(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.FallbackCities, cities)

	_, err = f.o.Cities(context.Background())
	require.NoError(t, err)
	f.directory.AssertNumberOfCalls(t, "ListCities", 1)
}

func TestLoadCities_StaleResponseDropped(t *testing.T) {
	f := setup(t)
	f.o.Cart().SetStep(cart.StepAddress)
	started := make(chan struct{})
	f.directory.On("ListCities", mock.Anything).Return(func(ctx context.Context) (api.Envelope[domain.City], error) {
		close(started)
		<-ctx.Done()
		return api.Envelope[domain.City]{Items: []domain.City{{ID: 9, Name: "Late"}}}, nil
	})

	errc := make(chan error, 1)
	go func() {
		_, err := f.o.LoadCities(context.Background())
		errc <- err
	}()
	<-started
	f.o.Prev()

	select {
	case err := <-errc:
		assert.ErrorIs(t, err, ErrStale)
	case <-time.After(2 * time.Second):
		t.Fatal("load was not cancelled by the step change")
	}
	v := f.o.View()
	assert.Equal(t, domain.FallbackCities, v.Cities, "stale list must not be applied")
	assert.False(t, v.CitiesLoading)
}

func TestLoadAddresses(t *testing.T) {
	t.Run("anonymous gets empty list without a call", func(t *testing.T) {
		f := setup(t)
		f.session.authenticated = false
		list, err := f.o.LoadAddresses(context.Background())
		require.NoError(t, err)
		assert.Empty(t, list)
		f.directory.AssertNotCalled(t, "ListAddresses", mock.Anything)
	})

	t.Run("saved address fills the form", func(t *testing.T) {
		f := setup(t)
		saved := domain.Address{ID: 3, AddressLine: "Av. Sol 5", CityID: 2, Sector: "Centro", Reference: "Blue door"}
		f.directory.On("ListAddresses", mock.Anything).Return(api.Envelope[domain.Address]{Items: []domain.Address{saved}}, nil)

		list, err := f.o.LoadAddresses(context.Background())
		require.NoError(t, err)
		require.Len(t, list, 1)

		st, err := f.o.UseSavedAddress(3)
		require.NoError(t, err)
		assert.Equal(t, domain.AddressForm{AddressLine: "Av. Sol 5", CityID: "2", Sector: "Centro", Reference: "Blue door"}, st.Address)

		_, err = f.o.UseSavedAddress(99)
		assert.ErrorIs(t, err, ErrAddressNotFound)
	})

	t.Run("failure is surfaced", func(t *testing.T) {
		f := setup(t)
		f.directory.On("ListAddresses", mock.Anything).Return(api.Envelope[domain.Address]{}, errors.New("down"))
		_, err := f.o.LoadAddresses(context.Background())
		assert.ErrorIs(t, err, ErrAddressesUnavailable)
		assert.NotEmpty(t, f.o.View().AddressError)
	})
}

func TestSubmit_CardSynthesizesTransactionID(t *testing.T) {
	f := setup(t)
	f.readyForSummary(domain.PaymentCard)
	f.orders.On("CreateOrder", mock.Anything, mock.MatchedBy(func(r api.CreateOrderRequest) bool {
		return r.Address != nil && r.Address.CityID == 2 && len(r.Items) == 1 && r.Items[0].Quantity == 2
	})).Return(receipt("101", "22.50"), nil)

	var sent api.CreatePaymentRequest
	f.orders.On("CreatePayment", mock.Anything, int64(101), mock.Anything).
		Run(func(args mock.Arguments) { sent = args.Get(2).(api.CreatePaymentRequest) }).
		Return(&domain.Payment{ID: 1, OrderID: 101, Status: domain.PaymentStatusApproved}, nil)

	res, err := f.o.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeCommitted, res.Outcome)
	assert.Equal(t, int64(101), res.OrderID)

	require.NotNil(t, sent.TransactionID)
	assert.Regexp(t, `^TX-\d+-\d+$`, *sent.TransactionID)
	assert.Equal(t, "TX-1740830400000-42", *sent.TransactionID)
	assert.Equal(t, domain.PaymentStatusApproved, sent.Status)
	assert.Equal(t, "22.50", sent.Amount.String())

	st := f.o.Cart().Snapshot()
	assert.Empty(t, st.Items, "cart reset after commit")
	assert.Equal(t, cart.StepItems, st.Step)
	v := f.o.View()
	assert.True(t, v.OrderSuccess)
	assert.Equal(t, int64(101), v.LastOrderID)
	assert.False(t, v.Processing)

	f.o.inflight.Wait()
	ev := f.notifier.last()
	assert.Equal(t, OutcomeCommitted, ev.Outcome)
	assert.Equal(t, "ana@example.com", ev.Email)
}

func TestSubmit_KeepsGivenTransactionID(t *testing.T) {
	f := setup(t)
	f.readyForSummary(domain.PaymentCard)
	tx := "TX-MANUAL"
	f.o.Cart().SetPaymentDetails(domain.PaymentPatch{TransactionID: &tx})
	f.orders.On("CreateOrder", mock.Anything, mock.Anything).Return(receipt("5", "22.50"), nil)
	f.orders.On("CreatePayment", mock.Anything, int64(5), mock.MatchedBy(func(r api.CreatePaymentRequest) bool {
		return r.TransactionID != nil && *r.TransactionID == tx
	})).Return(&domain.Payment{ID: 1}, nil)

	_, err := f.o.Submit(context.Background())
	require.NoError(t, err)
}

func TestSubmit_CashSendsNullTransaction(t *testing.T) {
	f := setup(t)
	f.readyForSummary(domain.PaymentCash)
	f.orders.On("CreateOrder", mock.Anything, mock.Anything).Return(receipt("7", ""), nil)
	f.orders.On("CreatePayment", mock.Anything, int64(7), mock.MatchedBy(func(r api.CreatePaymentRequest) bool {
		// no server total: local total is used
		return r.TransactionID == nil && r.Status == domain.PaymentStatusPaid && r.Amount.String() == "22.50"
	})).Return(&domain.Payment{ID: 2}, nil)

	res, err := f.o.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeCommitted, res.Outcome)
}

func TestSubmit_Gates(t *testing.T) {
	t.Run("incomplete cart is skipped", func(t *testing.T) {
		f := setup(t)
		f.o.Cart().SetStep(cart.StepSummary)
		res, err := f.o.Submit(context.Background())
		assert.ErrorIs(t, err, ErrStepIncomplete)
		assert.Equal(t, OutcomeSkipped, res.Outcome)
	})

	t.Run("anonymous is skipped", func(t *testing.T) {
		f := setup(t)
		f.readyForSummary(domain.PaymentCash)
		f.session.authenticated = false
		_, err := f.o.Submit(context.Background())
		assert.ErrorIs(t, err, ErrLoginRequired)
	})

	t.Run("city must be numeric", func(t *testing.T) {
		f := setup(t)
		f.readyForSummary(domain.PaymentCash)
		city := "Santiago"
		f.o.Cart().SetAddress(domain.AddressPatch{CityID: &city})
		_, err := f.o.Submit(context.Background())
		assert.ErrorIs(t, err, ErrInvalidCity)
	})
	// the mocks assert no API call happened in any case above
}

func TestSubmit_CityIDSpellings(t *testing.T) {
	cases := []struct {
		city string
		want int64
		ok   bool
	}{
		{"2", 2, true},
		{" 2", 2, true},
		{"2 ", 2, true},
		{"2.0", 2, true},
		{"2.5", 0, false},
		{"x", 0, false},
		{"0", 0, false},
		{"-3", 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.city, func(t *testing.T) {
			f := setup(t)
			f.readyForSummary(domain.PaymentCash)
			city := tc.city
			f.o.Cart().SetAddress(domain.AddressPatch{CityID: &city})
			if tc.ok {
				f.orders.On("CreateOrder", mock.Anything, mock.MatchedBy(func(r api.CreateOrderRequest) bool {
					return r.Address != nil && r.Address.CityID == tc.want
				})).Return(receipt("3", "22.50"), nil).Once()
				f.orders.On("CreatePayment", mock.Anything, int64(3), mock.Anything).Return(&domain.Payment{ID: 1}, nil).Once()
			}

			res, err := f.o.Submit(context.Background())

			if tc.ok {
				require.NoError(t, err)
				assert.Equal(t, OutcomeCommitted, res.Outcome)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidCity)
			assert.Equal(t, OutcomeSkipped, res.Outcome)
			assert.Equal(t, city, f.o.Cart().Snapshot().Address.CityID)
		})
	}
}

func TestSubmit_OrderFailureKeepsCart(t *testing.T) {
	f := setup(t)
	f.readyForSummary(domain.PaymentCash)
	f.orders.On("CreateOrder", mock.Anything, mock.Anything).Return(nil, &api.Error{Op: "create_order", Status: 500, Message: "server"})

	res, err := f.o.Submit(context.Background())
	assert.ErrorIs(t, err, ErrPurchaseFailed)
	assert.Equal(t, OutcomeFailed, res.Outcome)
	assert.Len(t, f.o.Cart().Snapshot().Items, 1)
	assert.False(t, f.o.Processing())
	_, pending := f.o.Pending()
	assert.False(t, pending)
	f.orders.AssertNotCalled(t, "CreatePayment", mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmit_InvalidOrderID(t *testing.T) {
	f := setup(t)
	f.readyForSummary(domain.PaymentCash)
	f.orders.On("CreateOrder", mock.Anything, mock.Anything).Return(&api.OrderReceipt{ID: api.Numeric{Present: true}}, nil)

	res, err := f.o.Submit(context.Background())
	assert.ErrorIs(t, err, ErrInvalidOrderID)
	assert.Equal(t, OutcomeFailed, res.Outcome)
}

func TestSubmit_PaymentFailureLeavesPendingOrder(t *testing.T) {
	f := setup(t)
	f.readyForSummary(domain.PaymentCard)
	before := f.o.Cart().Snapshot()
	f.orders.On("CreateOrder", mock.Anything, mock.Anything).Return(receipt("55", "22.50"), nil).Once()
	f.orders.On("CreatePayment", mock.Anything, int64(55), mock.Anything).Return(nil, errors.New("gateway down")).Once()

	res, err := f.o.Submit(context.Background())

	var pendingErr *PaymentPendingError
	require.ErrorAs(t, err, &pendingErr)
	assert.Equal(t, int64(55), pendingErr.OrderID)
	assert.ErrorIs(t, err, ErrPaymentPending)
	assert.ErrorIs(t, err, ErrPurchaseFailed)
	assert.Equal(t, OutcomePaymentPending, res.Outcome)

	after := f.o.Cart().Snapshot()
	assert.Equal(t, before.Items, after.Items, "cart unchanged")
	assert.Equal(t, before.Address, after.Address, "address unchanged")
	wantPayment := before.Payment
	wantPayment.TransactionID = "TX-1740830400000-42"
	assert.Equal(t, wantPayment, after.Payment, "card details kept with the generated transaction id")
	assert.Equal(t, cart.StepSummary, after.Step)
	assert.False(t, f.o.Processing())

	p, ok := f.o.Pending()
	require.True(t, ok)
	assert.Equal(t, "22.50", p.Amount.StringFixed(2))
	require.NotNil(t, p.TransactionID)
	assert.Equal(t, "TX-1740830400000-42", *p.TransactionID)
	f.o.inflight.Wait()
	assert.Equal(t, OutcomePaymentPending, f.notifier.last().Outcome)

	// resume records the payment on the same order without creating another one
	f.orders.On("CreatePayment", mock.Anything, int64(55), mock.MatchedBy(func(r api.CreatePaymentRequest) bool {
		return r.TransactionID != nil && *r.TransactionID == *p.TransactionID
	})).Return(&domain.Payment{ID: 9, OrderID: 55}, nil).Once()

	res, err = f.o.ResumePayment(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeCommitted, res.Outcome)
	_, ok = f.o.Pending()
	assert.False(t, ok)
	assert.Empty(t, f.o.Cart().Snapshot().Items)
	f.orders.AssertNumberOfCalls(t, "CreateOrder", 1)
}

func TestSubmit_InvalidServerTotalIsPending(t *testing.T) {
	f := setup(t)
	f.readyForSummary(domain.PaymentCash)
	r := receipt("60", "")
	r.Total = api.Numeric{Present: true}
	f.orders.On("CreateOrder", mock.Anything, mock.Anything).Return(r, nil)

	res, err := f.o.Submit(context.Background())
	assert.ErrorIs(t, err, ErrInvalidAmount)
	assert.Equal(t, OutcomePaymentPending, res.Outcome)
	f.orders.AssertNotCalled(t, "CreatePayment", mock.Anything, mock.Anything, mock.Anything)

	_, err = f.o.ResumePayment(context.Background())
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestResumePayment_NothingPending(t *testing.T) {
	f := setup(t)
	_, err := f.o.ResumePayment(context.Background())
	assert.ErrorIs(t, err, ErrNoPendingOrder)
}

func TestSubmit_RejectsConcurrentCommit(t *testing.T) {
	f := setup(t)
	f.readyForSummary(domain.PaymentCash)
	release := make(chan struct{})
	entered := make(chan struct{})
	f.orders.On("CreateOrder", mock.Anything, mock.Anything).Return(func(context.Context, api.CreateOrderRequest) (*api.OrderReceipt, error) {
		close(entered)
		<-release
		return receipt("1", "22.50"), nil
	}).Once()
	f.orders.On("CreatePayment", mock.Anything, int64(1), mock.Anything).Return(&domain.Payment{ID: 1}, nil).Once()

	done := make(chan error, 1)
	go func() {
		_, err := f.o.Submit(context.Background())
		done <- err
	}()
	<-entered

	assert.True(t, f.o.View().Processing)
	_, err := f.o.Submit(context.Background())
	assert.ErrorIs(t, err, ErrCheckoutInProgress)

	close(release)
	require.NoError(t, <-done)
	assert.False(t, f.o.Processing())
}

// gatedSession parks the first login check until released
type gatedSession struct {
	stubSession
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (s *gatedSession) IsAuthenticated() bool {
	s.once.Do(func() {
		close(s.entered)
		<-s.release
	})
	return s.stubSession.IsAuthenticated()
}

func TestSubmit_SecondCallerWaitsOutTheGates(t *testing.T) {
	f := setup(t)
	session := &gatedSession{
		stubSession: stubSession{authenticated: true, user: f.session.user},
		entered:     make(chan struct{}),
		release:     make(chan struct{}),
	}
	f.o = New(Options{
		Orders:    f.orders,
		Directory: f.directory,
		Session:   session,
		Now:       func() time.Time { return fixedNow },
		Intn:      func(int) int { return 42 },
	})
	t.Cleanup(f.o.Close)
	f.readyForSummary(domain.PaymentCash)
	f.orders.On("CreateOrder", mock.Anything, mock.Anything).Return(receipt("8", "22.50"), nil).Once()
	f.orders.On("CreatePayment", mock.Anything, int64(8), mock.Anything).Return(&domain.Payment{ID: 1}, nil).Once()

	done := make(chan error, 1)
	go func() {
		_, err := f.o.Submit(context.Background())
		done <- err
	}()
	<-session.entered

	assert.True(t, f.o.Processing(), "guard is held while the gates run")
	res, err := f.o.Submit(context.Background())
	assert.ErrorIs(t, err, ErrCheckoutInProgress)
	assert.Nil(t, res)

	close(session.release)
	require.NoError(t, <-done)

	_, err = f.o.Submit(context.Background())
	assert.ErrorIs(t, err, ErrStepIncomplete, "cart was reset by the first commit")
	f.orders.AssertNumberOfCalls(t, "CreateOrder", 1)
	assert.True(t, f.o.View().OrderSuccess, "a skipped attempt keeps the last success")
}

type blockingNotifier struct {
	release chan struct{}
	got     chan context.Context
}

func (n *blockingNotifier) Notify(ctx context.Context, _ Event) {
	<-n.release
	n.got <- ctx
}

func TestSubmit_NotifierRunsOffTheCommitPath(t *testing.T) {
	f := setup(t)
	n := &blockingNotifier{release: make(chan struct{}), got: make(chan context.Context, 1)}
	f.o.notifier = n
	f.readyForSummary(domain.PaymentCash)
	f.orders.On("CreateOrder", mock.Anything, mock.Anything).Return(receipt("9", "22.50"), nil).Once()
	f.orders.On("CreatePayment", mock.Anything, int64(9), mock.Anything).Return(&domain.Payment{ID: 1}, nil).Once()

	ctx, cancel := context.WithCancel(context.Background())
	res, err := f.o.Submit(ctx)
	cancel()

	require.NoError(t, err)
	assert.Equal(t, OutcomeCommitted, res.Outcome)
	assert.False(t, f.o.Processing(), "commit finished while the notifier is still blocked")

	close(n.release)
	nctx := <-n.got
	assert.NoError(t, nctx.Err(), "caller cancellation does not reach the notifier")
	_, hasDeadline := nctx.Deadline()
	assert.True(t, hasDeadline)
}
