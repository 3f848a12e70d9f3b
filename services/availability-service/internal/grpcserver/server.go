//go:build protogen

package grpcserver

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/timestamppb"

	availabilityv1 "github.com/example/slotwise/protos/gen/availability/v1"
	"github.com/example/slotwise/services/availability-service/internal/conflict"
	"github.com/example/slotwise/services/availability-service/internal/engine"
	"github.com/example/slotwise/services/availability-service/internal/slots"
)

type server struct {
	availabilityv1.UnimplementedAvailabilityServiceServer
	engine  *engine.Engine
	checker *conflict.Checker
}

func Register(grpcServer *grpc.Server, eng *engine.Engine, checker *conflict.Checker) {
	availabilityv1.RegisterAvailabilityServiceServer(grpcServer, &server{engine: eng, checker: checker})
}

func (s *server) GetSlots(ctx context.Context, req *availabilityv1.SlotsRequest) (*availabilityv1.SlotsResponse, error) {
	slotReq := engine.SlotRequest{
		OwnerID:     req.GetOwnerId(),
		SlotMinutes: int(req.GetSlotMinutes()),
		Zone:        req.GetTimezone(),
	}
	if req.GetWindowStart() != nil {
		slotReq.WindowStart = req.GetWindowStart().AsTime()
	}
	if req.GetWindowEnd() != nil {
		slotReq.WindowEnd = req.GetWindowEnd().AsTime()
	}
	if req.GetHasBusinessHours() {
		slotReq.Hours = &slots.BusinessHours{
			StartHour: int(req.GetStartHour()),
			EndHour:   int(req.GetEndHour()),
		}
	}

	candidates, err := s.engine.GetSlots(ctx, slotReq)
	if err != nil {
		return nil, err
	}
	resp := &availabilityv1.SlotsResponse{OwnerId: req.GetOwnerId()}
	for _, c := range candidates {
		resp.Slots = append(resp.Slots, &availabilityv1.Slot{
			StartUtc:  timestamppb.New(c.Interval.Start),
			EndUtc:    timestamppb.New(c.Interval.End),
			Available: c.Available,
			Reason:    string(c.Reason),
		})
	}
	return resp, nil
}

func (s *server) CheckConflict(ctx context.Context, req *availabilityv1.ConflictRequest) (*availabilityv1.ConflictResponse, error) {
	if req.GetStartUtc() == nil || req.GetEndUtc() == nil {
		return &availabilityv1.ConflictResponse{OwnerId: req.GetOwnerId()}, nil
	}
	proposed := slots.Interval{
		Start: req.GetStartUtc().AsTime(),
		End:   req.GetEndUtc().AsTime(),
	}

	found, err := s.checker.FindConflicts(ctx, req.GetOwnerId(), proposed, req.GetExcludeBookingId())
	if err != nil {
		return nil, err
	}
	resp := &availabilityv1.ConflictResponse{
		OwnerId:     req.GetOwnerId(),
		HasConflict: !found.Empty(),
	}
	for _, b := range found.Bookings {
		resp.Conflicts = append(resp.Conflicts, &availabilityv1.Conflict{
			Kind:      "booking",
			BookingId: b.ID,
			StartUtc:  timestamppb.New(b.Start),
			EndUtc:    timestamppb.New(b.End),
		})
	}
	for _, iv := range found.BlockedIntervals {
		resp.Conflicts = append(resp.Conflicts, &availabilityv1.Conflict{
			Kind:     "blocked",
			StartUtc: timestamppb.New(iv.Start),
			EndUtc:   timestamppb.New(iv.End),
		})
	}
	return resp, nil
}
