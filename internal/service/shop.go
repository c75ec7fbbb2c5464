package service

import (
	"context"

	"github.com/Elite-tch/privacycart/internal/model"
	"github.com/Elite-tch/privacycart/internal/session"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/Elite-tch/privacycart/internal/service")

type ShopService interface {
	CreateSession(ctx context.Context) (string, error)
	Exists(ctx context.Context, sessionID string) bool
	Snapshot(ctx context.Context, sessionID string) (session.State, error)
	CloseSession(ctx context.Context, sessionID string) error

	SelectProduct(ctx context.Context, sessionID, productID string) error
	CloseProduct(ctx context.Context, sessionID string) error
	AddToCart(ctx context.Context, sessionID, productID string) error
	RemoveFromCart(ctx context.Context, sessionID string, index int) error
	OpenDashboard(ctx context.Context, sessionID string) error
	CloseDashboard(ctx context.Context, sessionID string) error

	StartCheckout(ctx context.Context, sessionID string) error
	ConfirmPayment(ctx context.Context, sessionID string) error
	CloseCheckout(ctx context.Context, sessionID string) error
	ReturnToMarket(ctx context.Context, sessionID string) error

	OpenIntent(ctx context.Context, sessionID, query string) error
	RefineIntent(ctx context.Context, sessionID, text string) error
	CloseIntent(ctx context.Context, sessionID string) error
	SelectSuggestion(ctx context.Context, sessionID, productID string) (*model.Product, error)

	SendChat(ctx context.Context, sessionID, text string) error
}

type shopServiceImpl struct {
	catalog  CatalogService
	sessions *session.Manager
}

func NewShopService(catalog CatalogService, sessions *session.Manager) ShopService {
	return &shopServiceImpl{
		catalog:  catalog,
		sessions: sessions,
	}
}

// withSession runs fn against the session inside a span named op.
func (s *shopServiceImpl) withSession(ctx context.Context, op, sessionID string, fn func(ctx context.Context, sess *session.Session) error) error {
	ctx, span := tracer.Start(ctx, "shop."+op, trace.WithAttributes(attribute.String("session.id", sessionID)))
	defer span.End()

	err := func() error {
		sess, err := s.sessions.Get(sessionID)
		if err != nil {
			return err
		}
		return fn(ctx, sess)
	}()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (s *shopServiceImpl) CreateSession(ctx context.Context) (string, error) {
	_, span := tracer.Start(ctx, "shop.CreateSession")
	defer span.End()

	sess := s.sessions.Create()
	span.SetAttributes(attribute.String("session.id", sess.ID))
	return sess.ID, nil
}

func (s *shopServiceImpl) Exists(ctx context.Context, sessionID string) bool {
	_, err := s.sessions.Get(sessionID)
	return err == nil
}

func (s *shopServiceImpl) Snapshot(ctx context.Context, sessionID string) (session.State, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return session.State{}, err
	}
	return sess.Snapshot()
}

func (s *shopServiceImpl) CloseSession(ctx context.Context, sessionID string) error {
	_, span := tracer.Start(ctx, "shop.CloseSession", trace.WithAttributes(attribute.String("session.id", sessionID)))
	defer span.End()

	return s.sessions.Close(sessionID)
}

func (s *shopServiceImpl) SelectProduct(ctx context.Context, sessionID, productID string) error {
	return s.withSession(ctx, "SelectProduct", sessionID, func(ctx context.Context, sess *session.Session) error {
		product, err := s.catalog.FindByID(ctx, productID)
		if err != nil {
			return err
		}
		return sess.SelectProduct(*product)
	})
}

func (s *shopServiceImpl) CloseProduct(ctx context.Context, sessionID string) error {
	return s.withSession(ctx, "CloseProduct", sessionID, func(_ context.Context, sess *session.Session) error {
		return sess.CloseProduct()
	})
}

func (s *shopServiceImpl) AddToCart(ctx context.Context, sessionID, productID string) error {
	return s.withSession(ctx, "AddToCart", sessionID, func(ctx context.Context, sess *session.Session) error {
		product, err := s.catalog.FindByID(ctx, productID)
		if err != nil {
			return err
		}
		return sess.AddToCart(*product)
	})
}

func (s *shopServiceImpl) RemoveFromCart(ctx context.Context, sessionID string, index int) error {
	return s.withSession(ctx, "RemoveFromCart", sessionID, func(_ context.Context, sess *session.Session) error {
		return sess.RemoveFromCart(index)
	})
}

func (s *shopServiceImpl) OpenDashboard(ctx context.Context, sessionID string) error {
	return s.withSession(ctx, "OpenDashboard", sessionID, func(_ context.Context, sess *session.Session) error {
		return sess.OpenDashboard()
	})
}

func (s *shopServiceImpl) CloseDashboard(ctx context.Context, sessionID string) error {
	return s.withSession(ctx, "CloseDashboard", sessionID, func(_ context.Context, sess *session.Session) error {
		return sess.CloseDashboard()
	})
}

func (s *shopServiceImpl) StartCheckout(ctx context.Context, sessionID string) error {
	return s.withSession(ctx, "StartCheckout", sessionID, func(_ context.Context, sess *session.Session) error {
		return sess.StartCheckout()
	})
}

func (s *shopServiceImpl) ConfirmPayment(ctx context.Context, sessionID string) error {
	return s.withSession(ctx, "ConfirmPayment", sessionID, func(_ context.Context, sess *session.Session) error {
		return sess.ConfirmPayment()
	})
}

func (s *shopServiceImpl) CloseCheckout(ctx context.Context, sessionID string) error {
	return s.withSession(ctx, "CloseCheckout", sessionID, func(_ context.Context, sess *session.Session) error {
		return sess.CloseCheckout()
	})
}

func (s *shopServiceImpl) ReturnToMarket(ctx context.Context, sessionID string) error {
	return s.withSession(ctx, "ReturnToMarket", sessionID, func(_ context.Context, sess *session.Session) error {
		return sess.ReturnToMarket()
	})
}

func (s *shopServiceImpl) OpenIntent(ctx context.Context, sessionID, query string) error {
	return s.withSession(ctx, "OpenIntent", sessionID, func(_ context.Context, sess *session.Session) error {
		return sess.OpenIntent(query)
	})
}

func (s *shopServiceImpl) RefineIntent(ctx context.Context, sessionID, text string) error {
	return s.withSession(ctx, "RefineIntent", sessionID, func(_ context.Context, sess *session.Session) error {
		return sess.RefineIntent(text)
	})
}

func (s *shopServiceImpl) CloseIntent(ctx context.Context, sessionID string) error {
	return s.withSession(ctx, "CloseIntent", sessionID, func(_ context.Context, sess *session.Session) error {
		return sess.CloseIntent()
	})
}

func (s *shopServiceImpl) SelectSuggestion(ctx context.Context, sessionID, productID string) (*model.Product, error) {
	var selected model.Product
	err := s.withSession(ctx, "SelectSuggestion", sessionID, func(_ context.Context, sess *session.Session) error {
		p, err := sess.SelectSuggestion(productID)
		if err != nil {
			return err
		}
		selected = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &selected, nil
}

func (s *shopServiceImpl) SendChat(ctx context.Context, sessionID, text string) error {
	return s.withSession(ctx, "SendChat", sessionID, func(_ context.Context, sess *session.Session) error {
		return sess.SendChat(text)
	})
}
