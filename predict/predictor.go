// Package predict implements the intercept algorithm: given an order
// placed for a golfer group, find where a runner dispatched from the
// clubhouse will meet the group. Meeting time and golfer position are
// mutually dependent, so the answer is found by iterating a fixed point
// rather than computed in closed form.
package predict

import (
	"github.com/golfsim/golfsim/course"
	"github.com/golfsim/golfsim/orders"
	"github.com/golfsim/golfsim/routing"
)

const (
	maxIterations      = 6
	convergenceTolS    = int64(1)
)

// Predictor resolves (meeting_node, meeting_s) for a dispatch. It holds
// no per-order state; every field is read-only after construction.
type Predictor struct {
	course        *course.Course
	router        *routing.Router
	prepTimeS     int64
	runnerSpeedMS float64
}

// New builds a Predictor over a course/router pair and the fixed prep
// duration and runner speed for the run.
func New(c *course.Course, r *routing.Router, prepTimeS int64, runnerSpeedMS float64) *Predictor {
	return &Predictor{course: c, router: r, prepTimeS: prepTimeS, runnerSpeedMS: runnerSpeedMS}
}

// Predict returns the node and time at which a runner departing no
// earlier than t0+prepTimeS will intercept group, iterating until the
// meeting time changes by at most 1 s or 6 iterations have run —
// whichever comes first. Convergence is monotone because later meeting
// times only push the golfer farther along a non-decreasing path, which
// in turn cannot shorten the drive.
//
// Returns a *routing.ErrUnreachable if no path exists from the clubhouse
// to the predicted node; callers must treat this as fatal for the order.
func (p *Predictor) Predict(t0 int64, group orders.GolferGroup) (meetingNode string, meetingS int64, err error) {
	meetingS = t0 + p.prepTimeS
	meetingNode = p.course.PositionAt(meetingS - group.TeeTimeS)

	for i := 0; i < maxIterations; i++ {
		futureNode := p.course.PositionAt(meetingS - group.TeeTimeS)
		route, err := p.router.ShortestPath(p.course.ClubhouseNodeID, futureNode)
		if err != nil {
			return "", 0, err
		}
		driveOutS := route.TravelTime(p.runnerSpeedMS)

		newMeetingS := t0 + p.prepTimeS
		if t0+driveOutS > newMeetingS {
			newMeetingS = t0 + driveOutS
		}

		diff := newMeetingS - meetingS
		if diff < 0 {
			diff = -diff
		}
		meetingS = newMeetingS
		meetingNode = futureNode
		if diff <= convergenceTolS {
			break
		}
	}
	return meetingNode, meetingS, nil
}
