package api

// dashboardUI is the preview dashboard served at /_preview. It polls the
// JSON endpoints and reloads itself over /ws/reload like the pages do.
const dashboardUI = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>Portal Preview</title>
<style>
*{box-sizing:border-box;margin:0;padding:0}
body{font-family:-apple-system,BlinkMacSystemFont,'Segoe UI',Roboto,sans-serif;background:#f5f5f5;color:#333;line-height:1.6}
a{color:#457b9d;text-decoration:none}
a:hover{text-decoration:underline}

/* Header */
.hdr{background:#1d3557;color:#fff;padding:14px 20px;display:flex;align-items:center;justify-content:space-between;position:sticky;top:0;z-index:100}
.hdr h1{font-size:18px;font-weight:600}
.hdr-right{display:flex;align-items:center;font-size:13px;gap:6px}
.hdr-dot{width:10px;height:10px;border-radius:50%;display:inline-block}
.dot-green{background:#22c55e}.dot-red{background:#ef4444}.dot-gray{background:#9ca3af}

/* Tab bar */
.tabs{display:flex;border-bottom:2px solid #e5e7eb;background:#fff;padding:0 16px}
.tab{padding:12px 20px;cursor:pointer;font-size:14px;font-weight:500;color:#666;border-bottom:2px solid transparent;margin-bottom:-2px}
.tab.active{color:#1d3557;border-bottom-color:#1d3557}

.content{max-width:900px;margin:0 auto;padding:20px}
.page{display:none}
.page.active{display:block}
.card{background:#fff;border-radius:8px;padding:20px;margin-bottom:16px;box-shadow:0 1px 3px rgba(0,0,0,.1)}
.card h2{font-size:16px;margin-bottom:12px;padding-bottom:8px;border-bottom:1px solid #eee}

/* Builds */
.row{display:grid;grid-template-columns:1fr 90px 90px 70px 80px;gap:8px;padding:8px 0;border-bottom:1px solid #f0f0f0;font-size:13px}
.row:last-child{border:none}
.row-hdr{font-weight:600;color:#555;font-size:12px;text-transform:uppercase}
.mono{font-family:'SF Mono','Cascadia Code','Courier New',monospace;font-size:12px;color:#666;overflow:hidden;text-overflow:ellipsis;white-space:nowrap}
.badge{display:inline-block;padding:2px 10px;border-radius:20px;font-size:12px;font-weight:500}
.badge-green{background:#dcfce7;color:#166534}.badge-red{background:#fee2e2;color:#991b1b}.badge-gray{background:#f3f4f6;color:#374151}

/* Navigation */
.nav-controls{display:flex;gap:8px;margin-bottom:12px}
.nav-controls input,.nav-controls select{padding:6px 10px;border:1px solid #ddd;border-radius:6px;font-size:14px}
.link{padding:6px 10px;border-radius:4px;font-size:14px}
.link.active{background:#1d3557;color:#fff;font-weight:600}

/* Logs */
.log-container{background:#1a1a2e;border-radius:8px;padding:16px;font-family:'SF Mono','Cascadia Code','Courier New',monospace;font-size:13px;max-height:500px;overflow-y:auto;color:#a0aec0}
.log-entry{padding:2px 0;white-space:pre-wrap;word-break:break-all}
.log-time{color:#7fa8c9}
.log-info{color:#a0aec0}.log-warn{color:#f59e0b}.log-error{color:#ef4444}
.filter-btn{padding:5px 12px;border-radius:4px;border:1px solid #ddd;background:#fff;cursor:pointer;font-size:12px;margin:0 4px 12px 0}
.filter-btn.active{background:#1d3557;color:#fff;border-color:#1d3557}
</style>
</head>
<body>

<div class="hdr">
 <h1>Portal Preview</h1>
 <div class="hdr-right">
  <span id="hdr-text">Connecting...</span>
  <span id="hdr-dot" class="hdr-dot dot-gray"></span>
 </div>
</div>

<div class="tabs">
 <div class="tab active" data-page="builds" onclick="show('builds')">Builds</div>
 <div class="tab" data-page="nav" onclick="show('nav')">Navigation</div>
 <div class="tab" data-page="logs" onclick="show('logs')">Logs</div>
</div>

<div class="content">
 <div class="page active" id="page-builds">
  <div class="card">
   <h2>Recent Builds</h2>
   <div id="builds"></div>
  </div>
 </div>

 <div class="page" id="page-nav">
  <div class="card">
   <h2>Navigation</h2>
   <div class="nav-controls">
    <input id="nav-path" value="/" onchange="refreshNav()">
    <input id="nav-variant" placeholder="default variant" onchange="refreshNav()">
   </div>
   <div id="nav-links"></div>
  </div>
 </div>

 <div class="page" id="page-logs">
  <div class="card">
   <h2>Logs</h2>
   <button class="filter-btn active" onclick="setLogFilter('', this)">All</button>
   <button class="filter-btn" onclick="setLogFilter('warn,error', this)">Warnings</button>
   <button class="filter-btn" onclick="setLogFilter('error', this)">Errors</button>
   <button class="filter-btn" onclick="clearLogs()">Clear</button>
   <div class="log-container" id="log-viewer"></div>
  </div>
 </div>
</div>

<script>
var logFilter = '';

function esc(s) {
 var d = document.createElement('div');
 d.textContent = s == null ? '' : String(s);
 return d.innerHTML;
}

function show(page) {
 var tabs = document.querySelectorAll('.tab');
 for (var i = 0; i < tabs.length; i++) tabs[i].classList.toggle('active', tabs[i].getAttribute('data-page') === page);
 var pages = document.querySelectorAll('.page');
 for (var j = 0; j < pages.length; j++) pages[j].classList.toggle('active', pages[j].id === 'page-' + page);
 refresh();
}

function refreshBuilds() {
 fetch('/api/builds').then(function(r){return r.json()}).then(function(data) {
  var builds = data.builds || [];
  var html = '<div class="row row-hdr"><span>Build</span><span>Variant</span><span>Status</span><span>Pages</span><span>Time</span></div>';
  for (var i = 0; i < builds.length; i++) {
   var b = builds[i];
   var cls = b.status === 'succeeded' ? 'badge-green' : (b.status === 'failed' ? 'badge-red' : 'badge-gray');
   html += '<div class="row"><span class="mono" title="' + esc(b.error) + '">' + esc(b.id) + '</span><span>' + esc(b.variant) +
    '</span><span><span class="badge ' + cls + '">' + esc(b.status) + '</span></span><span>' + esc(b.pages) +
    '</span><span>' + esc(b.duration_ms) + 'ms</span></div>';
  }
  if (builds.length === 0) html = '<div style="color:#888">No builds yet</div>';
  document.getElementById('builds').innerHTML = html;
 }).catch(function(){});
}

function refreshNav() {
 var q = '?path=' + encodeURIComponent(document.getElementById('nav-path').value);
 var v = document.getElementById('nav-variant').value;
 if (v) q += '&variant=' + encodeURIComponent(v);
 fetch('/api/nav' + q).then(function(r){return r.json()}).then(function(data) {
  if (!data.links) {
   document.getElementById('nav-links').innerHTML = '<div style="color:#991b1b">' + esc(data.message) + '</div>';
   return;
  }
  var html = '';
  for (var i = 0; i < data.links.length; i++) {
   var l = data.links[i];
   html += '<a class="link' + (l.active ? ' active' : '') + '" href="' + esc(l.href) + '">' + esc(l.label) + '</a> ';
  }
  document.getElementById('nav-links').innerHTML = html || '<div style="color:#888">No entries</div>';
 }).catch(function(){});
}

function refreshLogs() {
 var q = logFilter ? '?level=' + logFilter : '';
 fetch('/api/logs' + q).then(function(r){return r.json()}).then(function(data) {
  var logs = data.logs || [];
  var html = '';
  for (var i = logs.length - 1; i >= 0; i--) {
   var l = logs[i];
   var ts = l.timestamp ? new Date(l.timestamp).toLocaleTimeString() : '';
   var lc = l.level === 'error' ? 'log-error' : (l.level === 'warn' ? 'log-warn' : 'log-info');
   html += '<div class="log-entry"><span class="log-time">[' + esc(ts) + ']</span> <span class="' + lc + '">' +
    esc((l.level || 'info').toUpperCase()) + '</span> ' + (l.component ? '[' + esc(l.component) + '] ' : '') + esc(l.message) + '</div>';
  }
  document.getElementById('log-viewer').innerHTML = html || '<div style="color:#555">No log entries</div>';
 }).catch(function(){});
}

function setLogFilter(filter, btn) {
 logFilter = filter;
 var btns = document.querySelectorAll('.filter-btn');
 for (var i = 0; i < btns.length; i++) btns[i].classList.remove('active');
 btn.classList.add('active');
 refreshLogs();
}

function clearLogs() {
 fetch('/api/logs', {method: 'DELETE'}).then(refreshLogs).catch(function(){});
}

function refresh() {
 refreshBuilds();
 refreshNav();
 refreshLogs();
}

function connect() {
 var p = location.protocol === 'https:' ? 'wss://' : 'ws://';
 var ws = new WebSocket(p + location.host + '/ws/reload');
 var dot = document.getElementById('hdr-dot');
 var text = document.getElementById('hdr-text');
 ws.onopen = function() { dot.className = 'hdr-dot dot-green'; text.textContent = 'Live'; };
 ws.onmessage = function() { refresh(); };
 ws.onclose = function() {
  dot.className = 'hdr-dot dot-red';
  text.textContent = 'Disconnected';
  setTimeout(connect, 2000);
 };
}

refresh();
connect();
setInterval(refresh, 5000);
</script>
</body>
</html>`
