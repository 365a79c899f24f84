package services

import (
	"context"
	"fmt"
	"strings"
	"testing"
)

func TestUpsertAndGetTemplate(t *testing.T) {
	ts := newTestStack(t)

	created, err := ts.email.UpsertTemplate("spring-promo", "Spring Promo", "Treats are here, {{name}}", "<p>{{name}}</p>", []string{"name"})
	if err != nil {
		t.Fatalf("UpsertTemplate error: %v", err)
	}
	if created.ID != "spring-promo" {
		t.Errorf("id = %q", created.ID)
	}

	// Updating the same slug replaces, not duplicates.
	if _, err := ts.email.UpsertTemplate("spring-promo", "Spring Promo v2", "New subject", "<p>v2</p>", nil); err != nil {
		t.Fatalf("second UpsertTemplate error: %v", err)
	}
	tmpl, err := ts.email.GetTemplate("spring-promo")
	if err != nil {
		t.Fatalf("GetTemplate error: %v", err)
	}
	if tmpl.Subject != "New subject" || tmpl.Name != "Spring Promo v2" {
		t.Errorf("template not updated: %+v", tmpl)
	}

	all, err := ts.email.ListTemplates()
	if err != nil {
		t.Fatalf("ListTemplates error: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("templates = %d, want 1", len(all))
	}
}

func TestUpsertTemplateRejectsEmptyFields(t *testing.T) {
	ts := newTestStack(t)

	if _, err := ts.email.UpsertTemplate("", "x", "s", "h", nil); err == nil {
		t.Error("accepted empty id")
	}
	if _, err := ts.email.UpsertTemplate("x", "x", "", "h", nil); err == nil {
		t.Error("accepted empty subject")
	}
	if _, err := ts.email.UpsertTemplate("x", "x", "s", "", nil); err == nil {
		t.Error("accepted empty html")
	}
}

func TestDeleteTemplateProtectsDefaults(t *testing.T) {
	ts := newTestStack(t)

	if err := ts.email.DeleteTemplate("welcome"); err != ErrProtectedTemplate {
		t.Errorf("DeleteTemplate(welcome) = %v, want ErrProtectedTemplate", err)
	}
	if err := ts.email.DeleteTemplate("no-such-template"); err != ErrTemplateNotFound {
		t.Errorf("DeleteTemplate(missing) = %v, want ErrTemplateNotFound", err)
	}

	ts.email.UpsertTemplate("one-off", "One Off", "s", "<p>h</p>", nil)
	if err := ts.email.DeleteTemplate("one-off"); err != nil {
		t.Errorf("DeleteTemplate(custom) = %v", err)
	}
	if _, err := ts.email.GetTemplate("one-off"); err != ErrTemplateNotFound {
		t.Errorf("deleted template still present: %v", err)
	}
}

func TestRenderTemplateWrapsBranding(t *testing.T) {
	ts := newTestStack(t)

	header := "<header>PawMe</header>"
	footer := "<footer>bye</footer>"
	settings, err := ts.settings.Get()
	if err != nil {
		t.Fatalf("settings error: %v", err)
	}
	settings.EmailHeader = header
	settings.EmailFooter = footer
	if err := ts.db.Save(settings).Error; err != nil {
		t.Fatalf("settings save error: %v", err)
	}

	ts.email.UpsertTemplate("welcome", "Welcome", "Hi {{name}}", "<p>Hello {{name}}</p>", []string{"name"})
	subject, html, err := ts.email.RenderTemplate("welcome", map[string]string{"name": "Ada"})
	if err != nil {
		t.Fatalf("RenderTemplate error: %v", err)
	}
	if subject != "Hi Ada" {
		t.Errorf("subject = %q", subject)
	}
	if !strings.HasPrefix(html, header) || !strings.HasSuffix(html, footer) {
		t.Errorf("branded html not wrapped: %q", html)
	}
	if !strings.Contains(html, "<p>Hello Ada</p>") {
		t.Errorf("body missing from %q", html)
	}

	// OTP-style templates skip branding.
	ts.email.UpsertTemplate("verification", "Verify", "Code", "<p>{{code}}</p>", []string{"code"})
	_, html, err = ts.email.RenderTemplate("verification", map[string]string{"code": "123456"})
	if err != nil {
		t.Fatalf("RenderTemplate error: %v", err)
	}
	if strings.Contains(html, header) || strings.Contains(html, footer) {
		t.Errorf("unbranded template was wrapped: %q", html)
	}
}

func TestBroadcastPromotionalRespectsOptIn(t *testing.T) {
	ts := newTestStack(t)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		user := ts.register(t, fmt.Sprintf("fan%d@pawme.app", i), fmt.Sprintf("Fan %d", i), "")
		if i >= 7 {
			ts.db.Model(user).Update("marketing_opt_in", false)
		}
	}
	before := ts.mailer.count()

	sent, failed, err := ts.email.Broadcast(ctx, "", "Big news", "<p>Hi {{name}}</p>", nil, true)
	if err != nil {
		t.Fatalf("Broadcast error: %v", err)
	}
	if sent != 7 || failed != 0 {
		t.Errorf("promotional broadcast sent=%d failed=%d, want 7/0", sent, failed)
	}
	if got := ts.mailer.count() - before; got != 7 {
		t.Errorf("mailer deliveries = %d, want 7", got)
	}
}

func TestBroadcastTransactionalReachesEveryone(t *testing.T) {
	ts := newTestStack(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		user := ts.register(t, fmt.Sprintf("all%d@pawme.app", i), fmt.Sprintf("All %d", i), "")
		if i%2 == 0 {
			ts.db.Model(user).Update("marketing_opt_in", false)
		}
	}

	sent, failed, err := ts.email.Broadcast(ctx, "", "Service notice", "<p>Heads up</p>", nil, false)
	if err != nil {
		t.Fatalf("Broadcast error: %v", err)
	}
	if sent != 5 || failed != 0 {
		t.Errorf("transactional broadcast sent=%d failed=%d, want 5/0", sent, failed)
	}
}

func TestBroadcastSubstitutesPerUserVariables(t *testing.T) {
	ts := newTestStack(t)
	ctx := context.Background()
	user := ts.register(t, "solo@pawme.app", "Solo", "")
	before := ts.mailer.count()

	if _, _, err := ts.email.Broadcast(ctx, "", "For {{name}}", "<p>{{referral_code}} / {{launch_date}}</p>", map[string]string{"launch_date": "June 1"}, false); err != nil {
		t.Fatalf("Broadcast error: %v", err)
	}
	if ts.mailer.count() != before+1 {
		t.Fatalf("deliveries = %d, want 1", ts.mailer.count()-before)
	}

	mails := ts.mailer.sentTo(user.Email)
	last := mails[len(mails)-1]
	if last.Subject != "For Solo" {
		t.Errorf("subject = %q", last.Subject)
	}
	if !strings.Contains(last.HTML, user.ReferralCode) || !strings.Contains(last.HTML, "June 1") {
		t.Errorf("html = %q", last.HTML)
	}
}

func TestBroadcastCountsFailures(t *testing.T) {
	ts := newTestStack(t)
	ctx := context.Background()
	ts.register(t, "fail1@pawme.app", "F1", "")
	ts.register(t, "fail2@pawme.app", "F2", "")

	ts.mailer.failErr = fmt.Errorf("provider down")
	sent, failed, err := ts.email.Broadcast(ctx, "", "Oops", "<p>x</p>", nil, false)
	if err != nil {
		t.Fatalf("Broadcast error: %v", err)
	}
	if sent != 0 || failed != 2 {
		t.Errorf("sent=%d failed=%d, want 0/2", sent, failed)
	}
}

func TestBroadcastUnknownTemplate(t *testing.T) {
	ts := newTestStack(t)
	ts.register(t, "tmpl@pawme.app", "Tmpl", "")

	if _, _, err := ts.email.Broadcast(context.Background(), "no-such-template", "", "", nil, false); err != ErrTemplateNotFound {
		t.Errorf("Broadcast(unknown template) = %v, want ErrTemplateNotFound", err)
	}
}

func TestBroadcastStoredTransactionalTemplateIgnoresOptOut(t *testing.T) {
	ts := newTestStack(t)
	ctx := context.Background()
	user := ts.register(t, "txn@pawme.app", "Txn", "")
	ts.db.Model(user).Update("marketing_opt_in", false)

	ts.email.UpsertTemplate("shipping-notice", "Shipped", "Update for {{name}}", "<p>{{name}}</p>", []string{"name"})

	// Promotional flag set, but the template id itself is transactional.
	sent, failed, err := ts.email.Broadcast(ctx, "shipping-notice", "", "", nil, true)
	if err != nil {
		t.Fatalf("Broadcast error: %v", err)
	}
	if sent != 1 || failed != 0 {
		t.Errorf("sent=%d failed=%d, want 1/0 despite opt-out", sent, failed)
	}
}
